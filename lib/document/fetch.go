package document

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"refuel/internal/components/telemetry"
	"refuel/lib/restyutil"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type FetcherOptions struct {
	// Timeout of a single request, defaults to 30 seconds.
	Timeout time.Duration
	// MinInterval is the minimum time between two requests, 0 disables the limit.
	MinInterval time.Duration
	UserAgent   string
	// CloudflareBypass wraps the transport with browser-like tls and headers.
	CloudflareBypass bool
	// Output receives full http messages when debug logging is enabled, can be nil.
	Output restyutil.InstrumentOutput
	Tel    telemetry.API
}

type Fetcher struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewFetcher(opts FetcherOptions) Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	restyutil.InstrumentClient(client, tracer, opts.Output)
	if opts.Tel != nil {
		telemetry.InstrumentResty(client, telemetry.NewScopedAPI("document", opts.Tel))
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}

	return Fetcher{http: client, limiter: limiter}
}

func isTextContent(contentType string) bool {
	if contentType == "" {
		// servers that omit the header are trusted to send markup
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") ||
		strings.Contains(mediaType, "html") ||
		strings.Contains(mediaType, "xml")
}

// Fetch downloads the page at `link` and parses it.
func (f Fetcher) Fetch(ctx context.Context, link string) (Document, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	fail := func(status int, err error) (Document, error) {
		fetchErr := &FetchError{Url: link, Status: status, Err: err}
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, fetchErr.Error())
		return Document{}, fetchErr
	}

	err := f.limiter.Wait(ctx)
	if err != nil {
		return fail(0, err)
	}

	res, err := f.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return fail(0, err)
	}
	if res.IsError() {
		return fail(res.StatusCode(), fmt.Errorf("unexpected status %s", res.Status()))
	}
	contentType := res.Header().Get("Content-Type")
	if !isTextContent(contentType) {
		return fail(res.StatusCode(), fmt.Errorf("unexpected content type '%s'", contentType))
	}

	doc, err := Parse(res.Body())
	if err != nil {
		return fail(res.StatusCode(), err)
	}
	slog.InfoContext(ctx, "document downloaded", "url", res.Request.URL, "bytes", len(doc.Raw()))
	return doc, nil
}
