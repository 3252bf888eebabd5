// asq tells the Autonomous System announcing an IP address.
//
//	asq [-v] IP-ADDRESS
//
// Example:
//
//	$ asq 129.42.38.10
//	IBM-EI
//	$ asq -v 129.42.38.10
//	IBM-EI - IBM - Events Infrastructure - US
//	IBMCCH-RTP - IBM - US
//	ISSC-AS - IBM Corporation - US
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/42wim/asq/lookup"
	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"
)

var (
	version  = "0.0.1"
	provider = lookup.DefaultProvider
	resolver = "8.8.8.8"
	log      = logrus.New()
)

// sysexits(3)
const (
	exitOK          = 0
	exitUsage       = 64
	exitUnavailable = 69
)

type options struct {
	Verbose  bool
	JSON     bool
	Debug    bool
	Name     bool
	Help     bool
	Version  bool
	Timeout  time.Duration
	Resolver string
}

func newGetoptParser(opts *options) *getopt.Set {
	set := getopt.New()
	set.SetProgram("asq")
	set.SetParameters("IP-ADDRESS")
	set.FlagLong(&opts.Verbose, "verbose", 'v', "show name, description and country of every AS")
	set.FlagLong(&opts.JSON, "json", 'j', "print the prefixes as JSON")
	set.FlagLong(&opts.Debug, "debug", 'd', "enable debug logging")
	set.FlagLong(&opts.Name, "name", 'n', "argument is a host name, look up its first address")
	set.FlagLong(&opts.Resolver, "resolver", 'r', "DNS resolver used with --name", "addr")
	set.FlagLong(&opts.Timeout, "timeout", 't', "HTTP timeout, 0 waits forever", "duration")
	set.FlagLong(&opts.Version, "version", 0, "print version and exit")
	set.FlagLong(&opts.Help, "help", 'h', "show this help")
	return set
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{Resolver: resolver}
	set := newGetoptParser(opts)
	if err := set.Getopt(args, nil); err != nil {
		fmt.Fprintln(stderr, err)
		set.PrintUsage(stderr)
		return exitUsage
	}
	if opts.Help {
		set.PrintUsage(stdout)
		return exitOK
	}
	if opts.Version {
		fmt.Fprintf(stdout, "asq %s\n", version)
		return exitOK
	}
	if len(set.Args()) != 1 {
		fmt.Fprintln(stderr, "please enter one IP address. (e.g. 129.42.38.10)")
		set.PrintUsage(stderr)
		return exitUsage
	}

	log.Out = stderr
	log.Level = logrus.InfoLevel
	if opts.Debug {
		log.Level = logrus.DebugLevel
	}

	address := set.Args()[0]
	if opts.Name {
		ip, err := resolveName(address, opts.Resolver)
		if err != nil {
			printError(stderr, err)
			return exitUnavailable
		}
		log.Debugf("%s resolved to %s", address, ip)
		address = ip.String()
	}

	l := lookup.New(&lookup.Config{
		Debug:    opts.Debug,
		Provider: provider,
		Timeout:  opts.Timeout,
		Out:      stderr,
	})

	s := newSpinner(stderr, opts)
	if s != nil {
		s.Suffix = " Asking " + l.URL(address)
		s.Start()
	}
	data, err := l.Resolve(context.Background(), address)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		printError(stderr, err)
		return exitUnavailable
	}

	if err := outputter(stdout, data, opts); err != nil {
		printError(stderr, err)
		return exitUnavailable
	}
	return exitOK
}
