package main

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newSpinner returns nil when nobody would see the spinner or it would
// mess up debug and JSON output.
func newSpinner(w io.Writer, opts *options) *spinner.Spinner {
	if opts.Debug || opts.JSON || !isTerminal(w) {
		return nil
	}
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
}

// resolverAddr adds the default DNS port when server has none.
func resolverAddr(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

func prepMsg() *dns.Msg {
	m := new(dns.Msg)
	m.Id = dns.Id()
	m.RecursionDesired = true
	m.Question = make([]dns.Question, 1)
	return m
}

func query(q string, qtype uint16, server string) (*dns.Msg, error) {
	c := new(dns.Client)
	m := prepMsg()
	log.Debugf("Asking %s about %s (%s)", server, q, dns.TypeToString[qtype])
	m.Question[0] = dns.Question{
		Name:   dns.Fqdn(q),
		Qtype:  qtype,
		Qclass: dns.ClassINET,
	}
	in, _, err := c.Exchange(m, resolverAddr(server))
	if err != nil {
		return nil, err
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, errors.Errorf("failure: %s", dns.RcodeToString[in.Rcode])
	}
	return in, nil
}

func extractIP(rrset []dns.RR) []net.IP {
	var ips []net.IP
	for _, rr := range rrset {
		switch rr := rr.(type) {
		case *dns.A:
			ips = append(ips, rr.A)
		case *dns.AAAA:
			ips = append(ips, rr.AAAA)
		}
	}
	return ips
}

func getIP(host string, qtype uint16, server string) ([]net.IP, error) {
	in, err := query(host, qtype, server)
	if err != nil {
		return nil, err
	}
	return extractIP(in.Answer), nil
}

// resolveName returns the first A record of name, or its first AAAA
// record when there is no A record.
func resolveName(name, server string) (net.IP, error) {
	err := errors.New("no address found")
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		ips, qerr := getIP(name, qtype, server)
		if qerr != nil {
			log.Debugf("%s lookup of %s failed: %s", dns.TypeToString[qtype], name, qerr)
			err = qerr
			continue
		}
		if len(ips) > 0 {
			return ips[0], nil
		}
	}
	return nil, errors.Wrapf(err, "Could not resolve %s", name)
}
