// Package httputil provides HTTP helpers shared by repository clients.
//
// A [Backoff] retries an operation on a doubling delay. Only errors marked
// with [Transient] are retried: network failures and 5xx responses are worth
// another try, a 404 is not.
//
//	err := httputil.DefaultBackoff.Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Transient(err)
//	    }
//	    ...
//	})
package httputil
