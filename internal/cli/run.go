package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curless/curless/http"
	"github.com/curless/curless/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run FILE REQUEST",
	Short: "Run a named request from a collection file",
	Long: `Run a named request from a JSON or YAML collection file.

{{name}} placeholders in the request are replaced with the variables of the
environment selected by --env, and --var overrides them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		envName, _ := cmd.Flags().GetString("env")
		varArgs, _ := cmd.Flags().GetStringArray("var")

		vars, err := parsePairs(varArgs, "variable")
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		if errs := config.ValidateConfig(cfg); len(errs) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Configuration validation errors:")
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", e.Error())
			}
			return fmt.Errorf("invalid collection %s: %d validation errors", args[0], len(errs))
		}

		resolved, err := cfg.Resolve(args[1], envName, vars)
		if err != nil {
			return err
		}

		logger.Debug().
			Str("request", resolved.Name).
			Str("environment", envName).
			Str("url", resolved.URL).
			Msg("resolved collection request")

		c, err := checksFromFlags(cmd)
		if err != nil {
			return err
		}
		for name, path := range resolved.Extract {
			if _, set := c.extract[name]; !set {
				c.extract[name] = path
			}
		}
		if c.schema == "" {
			c.schema = resolved.Schema
		}
		c.expectStatus = resolved.ExpectedStatus

		return perform(cmd, newResolvedRequest(resolved), c)
	},
}

// newResolvedRequest builds a request from a collection entry. Settings in
// the entry win over the shared defaults.
func newResolvedRequest(r *config.Resolved) *http.Request {
	req := newClient().Request(r.Method, r.URL).
		SetQuery(r.QueryParams).
		SetBody(r.Body).
		SetFiles(r.Files)
	for name, value := range r.Headers {
		req.WithHeader(name, value)
	}
	if r.Timeout > 0 {
		req.SetTimeout(r.Timeout)
	}
	if r.Insecure {
		req.SetVerifyTLS(false)
	}
	if r.NoFollow {
		req.SetFollowRedirects(false)
	}
	return req
}

func init() {
	runCmd.Flags().String("env", "", "Environment whose variables and base URL apply")
	runCmd.Flags().StringArray("var", []string{}, "Variable overrides as key=value (can be used multiple times)")
	addOutputFlags(runCmd)
}
