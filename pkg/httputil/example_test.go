package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/pkggraph/pkg/httputil"
)

func ExampleBackoff_Do() {
	calls := 0
	b := httputil.Backoff{Attempts: 3, Delay: time.Millisecond}
	err := b.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return httputil.Transient(errors.New("status 503"))
		}
		return nil
	})
	fmt.Println("calls:", calls, "err:", err)
	// Output:
	// calls: 3 err: <nil>
}
