package cli

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
)

// ErrDegraded is returned when the server is up but its storage is not
var ErrDegraded = errors.New("server degraded: storage unavailable")

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			err := client.Get("/api/v1/health", &result)

			// A degraded server still reports its status in the body
			var httpErr *HTTPError
			degraded := errors.As(err, &httpErr) && httpErr.Status == http.StatusServiceUnavailable &&
				json.Unmarshal(httpErr.Body, &result) == nil
			if err != nil && !degraded {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)

			if degraded {
				return ErrDegraded
			}
			return nil
		},
	}
}
