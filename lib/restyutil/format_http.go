package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
)

// writeHeaders writes one "Key: Value" line per header value, keys sorted so
// dumps of the same page can be diffed.
func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return "<no body>"
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<failed to get request body: %s>", err)
	}
	defer body.Close()
	contents, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<failed to read request body: %s>", err)
	}
	return string(contents)
}

// formatHttpMessage renders a request and its response as plain text:
//
//	---- REQUEST ----
//	<method> <url>
//	<headers>
//	<body>
//	---- RESPONSE ----
//	<status> <final url> (<n> bytes)
//	<headers>
//	<body>
func formatHttpMessage(res *resty.Response) string {
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	writeHeaders(&out, res.Request.RawRequest.Header)
	out.WriteString("\n")
	out.WriteString(requestBody(res.Request.RawRequest))
	out.WriteString("\n\n")

	finalUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}
	body := res.Body()

	out.WriteString("---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s (%d bytes)\n\n", res.StatusCode(), finalUrl, len(body))
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.Write(body)

	return out.String()
}
