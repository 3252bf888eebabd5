package lookup

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/42wim/asq/structs"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// DefaultProvider is the base URL of the bgpview API.
const DefaultProvider = "https://api.bgpview.io"

type Config struct {
	Debug bool
	// Provider is the base URL, the address is appended as /ip/<address>.
	Provider string
	// Timeout of the whole request, 0 means no timeout.
	Timeout time.Duration
	// Out receives the debug log, nil keeps stderr.
	Out io.Writer
}

type Lookup struct {
	*Config
	client *http.Client
}

func New(cfg *Config) *Lookup {
	l := &Lookup{
		Config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.Provider == "" {
		l.Config.Provider = DefaultProvider
	}
	log.Out = os.Stderr
	if cfg.Out != nil {
		log.Out = cfg.Out
	}
	log.Level = logrus.InfoLevel
	if cfg.Debug {
		log.Level = logrus.DebugLevel
	}
	return l
}

// URL returns the lookup URL for address. The address is not escaped
// nor validated, rejecting bogus input is up to the provider.
func (l *Lookup) URL(address string) string {
	return strings.TrimSuffix(l.Provider, "/") + "/ip/" + address
}

// Resolve asks the provider which prefixes, and thus which AS, announce
// address. The returned data always holds at least one prefix.
func (l *Lookup) Resolve(ctx context.Context, address string) (*structs.ASData, error) {
	log.Debugf("Lookup: resolve %s", address)
	defer log.Debugf("Lookup: resolve exit")

	body, err := l.get(ctx, l.URL(address))
	if err != nil {
		return nil, &Error{Kind: KindConnect, Err: err}
	}

	resp, err := decode(body)
	if err != nil {
		return nil, &Error{Kind: KindParse, Err: err, Body: string(body)}
	}

	if resp.Status != "ok" {
		log.Debugf("Lookup: status %s (%s)", resp.Status, resp.StatusMessage)
		return nil, &Error{Kind: KindStatus, Status: resp.Status}
	}

	if len(resp.Data.Prefixes) == 0 {
		return nil, &Error{Kind: KindEmpty}
	}
	return &resp.Data, nil
}

func (l *Lookup) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	log.Debugf("Asking %s", url)
	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// non-2xx is not an error here, the body still tells what went wrong
	log.Debugf("Got %s (%s) in %s", humanize.Bytes(uint64(len(body))), resp.Status, time.Since(start))
	return body, nil
}
