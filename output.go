package main

import (
	"fmt"
	"io"

	"github.com/42wim/asq/lookup"
	"github.com/42wim/asq/structs"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func outputter(w io.Writer, data *structs.ASData, opts *options) error {
	if len(data.Prefixes) == 0 {
		return &lookup.Error{Kind: lookup.KindEmpty}
	}
	switch {
	case opts.JSON:
		b, err := json.MarshalIndent(data.Prefixes, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	case opts.Verbose:
		for _, prefix := range data.Prefixes {
			fmt.Fprintf(w, "%s - %s - %s\n", prefix.ASN.Name, prefix.ASN.Description, prefix.ASN.CountryCode)
		}
	default:
		fmt.Fprintln(w, data.Prefixes[0].ASN.Name)
	}
	return nil
}

func printError(w io.Writer, err error) {
	c := color.New(color.FgRed, color.Bold)
	if isTerminal(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprint(w, "Error:")
	fmt.Fprintf(w, " %s\n", err)
}
