package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/curless/curless/http"
	"github.com/curless/curless/internal/output"
)

var (
	getCmd    = newMethodCommand("GET")
	postCmd   = newMethodCommand("POST")
	putCmd    = newMethodCommand("PUT")
	patchCmd  = newMethodCommand("PATCH")
	deleteCmd = newMethodCommand("DELETE")
	headCmd   = newMethodCommand("HEAD")
)

func newMethodCommand(method string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " URL",
		Short: fmt.Sprintf("Make a %s request to the specified URL", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd, method, args[0])
			if err != nil {
				return err
			}
			c, err := checksFromFlags(cmd)
			if err != nil {
				return err
			}
			return perform(cmd, req, c)
		},
	}
	addRequestFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include as \"Name: Value\" (can be used multiple times)")
	cmd.Flags().StringArrayP("query", "q", []string{}, "Query parameters as key=value (can be used multiple times)")
	cmd.Flags().StringP("data", "d", "", "Raw request body (form-encoded unless Content-Type is given)")
	cmd.Flags().StringP("json", "j", "", "Raw JSON request body")
	cmd.Flags().StringArrayP("form", "f", []string{}, "Form fields as key=value (can be used multiple times)")
	cmd.Flags().StringArrayP("file", "F", []string{}, "Multipart file uploads as field=path (can be used multiple times)")
	cmd.Flags().IntP("timeout", "t", 10, "Request timeout in seconds")
	cmd.Flags().BoolP("insecure", "k", false, "Skip TLS certificate verification")
	cmd.Flags().Bool("no-follow", false, "Do not follow redirects")
	cmd.Flags().Bool("request-id", false, "Send a generated X-Request-Id header")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "Show timing, header blocks and transfer details")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().StringP("format", "o", "text", "Output format: text, json or yaml")
	cmd.Flags().StringArrayP("extract", "e", []string{}, "Extract values as name=$.json.path (can be used multiple times)")
	cmd.Flags().String("schema", "", "Validate the response body against this JSON Schema file")
}

// newClient returns a client carrying the shared defaults.
func newClient() *http.Client {
	return http.NewClient(
		http.WithTimeout(settings.GetInt("timeout")),
		http.WithVerifyTLS(!settings.GetBool("insecure")),
		http.WithFollowRedirects(!settings.GetBool("no-follow")),
		http.WithLogger(logger),
	)
}

// buildRequest turns the request flags into a builder. The Content-Type
// follows the body flag unless a header sets it.
func buildRequest(cmd *cobra.Command, method, target string) (*http.Request, error) {
	flags := cmd.Flags()
	headerArgs, _ := flags.GetStringArray("header")
	queryArgs, _ := flags.GetStringArray("query")
	formArgs, _ := flags.GetStringArray("form")
	fileArgs, _ := flags.GetStringArray("file")
	data, _ := flags.GetString("data")
	rawJSON, _ := flags.GetString("json")
	requestID, _ := flags.GetBool("request-id")

	headers, err := parseHeaders(headerArgs)
	if err != nil {
		return nil, err
	}
	query, err := parsePairs(queryArgs, "query parameter")
	if err != nil {
		return nil, err
	}
	form, err := parsePairs(formArgs, "form field")
	if err != nil {
		return nil, err
	}
	files, err := parsePairs(fileArgs, "file")
	if err != nil {
		return nil, err
	}

	bodies := 0
	for _, set := range []bool{flags.Changed("data"), flags.Changed("json"), len(form) > 0} {
		if set {
			bodies++
		}
	}
	if bodies > 1 {
		return nil, fmt.Errorf("--data, --json and --form cannot be combined")
	}

	if len(files) > 0 && (flags.Changed("data") || flags.Changed("json")) {
		return nil, fmt.Errorf("--data and --json cannot be combined with --file; use --form for the other fields")
	}

	var body any
	contentType := ""
	switch {
	case flags.Changed("json"):
		body = json.RawMessage(rawJSON)
		contentType = http.ContentTypeJSON
	case flags.Changed("data"):
		body = data
		contentType = http.ContentTypeForm
	case len(form) > 0:
		body = form
		contentType = http.ContentTypeForm
	}
	if len(files) > 0 {
		contentType = http.ContentTypeMultipart
	}
	if contentType != "" && !hasHeader(headers, "Content-Type") {
		headers["Content-Type"] = contentType
	}
	if requestID && !hasHeader(headers, "X-Request-Id") {
		headers["X-Request-Id"] = uuid.NewString()
	}

	req := newClient().Request(method, target).
		SetQuery(query).
		SetBody(body).
		SetFiles(files)
	for name, value := range headers {
		req.WithHeader(name, value)
	}
	return req, nil
}

// checks are the assertions applied to a response once it is printed.
type checks struct {
	extract      map[string]string
	schema       string
	expectStatus int
}

func checksFromFlags(cmd *cobra.Command) (checks, error) {
	extractArgs, _ := cmd.Flags().GetStringArray("extract")
	schemaFile, _ := cmd.Flags().GetString("schema")

	extract, err := parsePairs(extractArgs, "extraction")
	if err != nil {
		return checks{}, err
	}
	c := checks{extract: extract}

	if schemaFile != "" {
		data, err := os.ReadFile(schemaFile)
		if err != nil {
			return checks{}, fmt.Errorf("error reading schema file: %w", err)
		}
		c.schema = string(data)
	}
	return c, nil
}

// perform sends req, prints the exchange and applies c.
func perform(cmd *cobra.Command, req *http.Request, c checks) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, err := output.ParseFormat(settings.GetString("format"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	noColor := output.ColorDisabled(out, settings.GetBool("no-color"))
	formatter := output.GetFormatter(format, verbose, noColor)

	// structured formats print only the response so the output stays parseable
	if format == output.FormatText {
		write(out, formatter.FormatRequest(req))
	}

	resp, err := req.Send(cmd.Context())
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	write(out, formatter.FormatResponse(resp))

	if len(c.extract) > 0 {
		values, err := resp.Extract(c.extract)
		if len(values) > 0 {
			write(out, output.FormatValues(format, "extracted", values))
		}
		if err != nil {
			return err
		}
	}

	if c.schema != "" {
		if err := resp.ValidateSchema(c.schema); err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}
		if format == output.FormatText {
			write(out, "Schema: valid")
		}
	}

	if c.expectStatus != 0 && resp.Status() != c.expectStatus {
		return fmt.Errorf("expected status %d, got %d", c.expectStatus, resp.Status())
	}
	return nil
}

// write prints s and terminates it with a newline when it lacks one.
func write(w io.Writer, s string) {
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	fmt.Fprint(w, s)
}
