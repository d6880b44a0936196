// Package solidtime is a client for the Solidtime time-tracking API.
//
// Every call goes through the resilient transport from package transport,
// which authenticates requests, retries rate-limited calls and, in verbose
// mode, logs request and response bodies. Resources hang off the Client:
//
//	cfg, err := config.Load("solidtime.yaml")
//	if err != nil {
//		return err
//	}
//	client, err := solidtime.New(cfg, log)
//	if err != nil {
//		return err
//	}
//	me, err := client.Me.Get(ctx)
//
// Non-2xx responses are returned as *APIError.
package solidtime
