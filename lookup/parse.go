package lookup

import (
	"fmt"
	"io"
	"strings"

	"github.com/42wim/asq/structs"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Keys must match exactly, "STATUS" is not "status".
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// The raw* types mirror structs but keep pointers, so a field that is
// absent (or null) can be told apart from a zero value.
type rawResponse struct {
	Status        *string  `json:"status"`
	StatusMessage *string  `json:"status_message"`
	Data          *rawData `json:"data"`
}

type rawData struct {
	Prefixes *[]rawPrefix `json:"prefixes"`
}

type rawPrefix struct {
	Prefix      *string `json:"prefix"`
	IP          *string `json:"ip"`
	CIDR        *uint32 `json:"cidr"`
	ASN         *rawASN `json:"asn"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CountryCode *string `json:"country_code"`
}

type rawASN struct {
	ASN         *uint32 `json:"asn"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CountryCode *string `json:"country_code"`
}

// required collects the first missing field while copying values out
// of a raw struct.
type required struct {
	path string
	err  error
}

func (r *required) fail(name string) {
	if r.err == nil {
		r.err = errors.Errorf("missing field `%s%s`", r.path, name)
	}
}

func (r *required) str(v *string, name string) string {
	if v == nil {
		r.fail(name)
		return ""
	}
	return *v
}

func (r *required) num(v *uint32, name string) uint32 {
	if v == nil {
		r.fail(name)
		return 0
	}
	return *v
}

// decode parses body into an ASResponse. Every field is required, a
// single missing one fails the whole document.
func decode(body []byte) (*structs.ASResponse, error) {
	var raw rawResponse
	err := json.Unmarshal(body, &raw)
	// jsoniter stops quietly on a truncated document
	if err == nil && !json.Valid(body) {
		err = errors.New("unexpected end of JSON input")
	}
	if err != nil {
		return nil, err
	}
	if err := uniqueKeys(jsoniter.ParseBytes(json, body), ""); err != nil {
		return nil, err
	}

	r := &required{}
	resp := &structs.ASResponse{
		Status:        r.str(raw.Status, "status"),
		StatusMessage: r.str(raw.StatusMessage, "status_message"),
	}
	if r.err != nil {
		return nil, r.err
	}
	if raw.Data == nil {
		r.fail("data")
		return nil, r.err
	}
	if raw.Data.Prefixes == nil {
		r.fail("data.prefixes")
		return nil, r.err
	}

	resp.Data.Prefixes = make([]structs.ASPrefix, 0, len(*raw.Data.Prefixes))
	for i, p := range *raw.Data.Prefixes {
		prefix, err := p.convert(fmt.Sprintf("data.prefixes[%d].", i))
		if err != nil {
			return nil, err
		}
		resp.Data.Prefixes = append(resp.Data.Prefixes, prefix)
	}
	return resp, nil
}

func (p rawPrefix) convert(path string) (structs.ASPrefix, error) {
	r := &required{path: path}
	prefix := structs.ASPrefix{
		Prefix:      r.str(p.Prefix, "prefix"),
		IP:          r.str(p.IP, "ip"),
		CIDR:        r.num(p.CIDR, "cidr"),
		Name:        r.str(p.Name, "name"),
		Description: r.str(p.Description, "description"),
		CountryCode: r.str(p.CountryCode, "country_code"),
	}
	if p.ASN == nil {
		r.fail("asn")
		return prefix, r.err
	}
	prefix.ASN = structs.ASN{
		ASN:         r.num(p.ASN.ASN, "asn.asn"),
		Name:        r.str(p.ASN.Name, "asn.name"),
		Description: r.str(p.ASN.Description, "asn.description"),
		CountryCode: r.str(p.ASN.CountryCode, "asn.country_code"),
	}
	return prefix, r.err
}

// uniqueKeys walks the document and fails on the first object holding
// the same key twice.
func uniqueKeys(iter *jsoniter.Iterator, path string) error {
	var err error
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		seen := make(map[string]bool)
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
			if seen[key] {
				err = errors.Errorf("duplicate field `%s%s`", path, key)
				return false
			}
			seen[key] = true
			err = uniqueKeys(iter, path+key+".")
			return err == nil
		})
	case jsoniter.ArrayValue:
		i := 0
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			err = uniqueKeys(iter, fmt.Sprintf("%s[%d].", strings.TrimSuffix(path, "."), i))
			i++
			return err == nil
		})
	default:
		iter.Skip()
	}
	if err == nil && iter.Error != nil && iter.Error != io.EOF {
		err = iter.Error
	}
	return err
}
