package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/42wim/asq/structs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ibmResponse = `{"status": "ok", "status_message": "Query was successful", "data": {"prefixes": [
  {"prefix": "129.42.38.0/24", "ip": "129.42.38.0", "cidr": 24,
   "asn": {"asn": 17390, "name": "IBM-EI", "description": "IBM - Events Infrastructure", "country_code": "US"},
   "name": "IBM-EI", "description": "IBM - Events Infrastructure", "country_code": "US"},
  {"prefix": "129.42.0.0/16", "ip": "129.42.0.0", "cidr": 16,
   "asn": {"asn": 2140, "name": "IBMCCH-RTP", "description": "IBM", "country_code": "US"},
   "name": "IBMCCH-RTP", "description": "IBM", "country_code": "US"},
  {"prefix": "129.32.0.0/11", "ip": "129.32.0.0", "cidr": 11,
   "asn": {"asn": 3356, "name": "ISSC-AS", "description": "IBM Corporation", "country_code": "US"},
   "name": "ISSC-AS", "description": "IBM Corporation", "country_code": "US"}
]}}`

// setProvider points the lookups of run at a fake provider serving body.
func setProvider(t *testing.T, body string) func() []string {
	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	orig := provider
	provider = server.URL
	t.Cleanup(func() { provider = orig })
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"asq"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	paths := setProvider(t, ibmResponse)

	code, stdout, stderr := runArgs("129.42.38.10")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "IBM-EI\n", stdout)
	assert.Empty(t, stderr)
	assert.Equal(t, []string{"/ip/129.42.38.10"}, paths())
}

func TestRunVerbose(t *testing.T) {
	setProvider(t, ibmResponse)
	expected := "IBM-EI - IBM - Events Infrastructure - US\n" +
		"IBMCCH-RTP - IBM - US\n" +
		"ISSC-AS - IBM Corporation - US\n"

	for _, flag := range []string{"-v", "--verbose"} {
		code, stdout, stderr := runArgs(flag, "129.42.38.10")
		assert.Equal(t, exitOK, code, flag)
		assert.Equal(t, expected, stdout, flag)
		assert.Empty(t, stderr, flag)
	}
}

func TestRunTwice(t *testing.T) {
	setProvider(t, ibmResponse)

	_, first, _ := runArgs("-v", "129.42.38.10")
	_, second, _ := runArgs("-v", "129.42.38.10")
	assert.Equal(t, first, second)
}

func TestRunJSON(t *testing.T) {
	setProvider(t, ibmResponse)

	code, stdout, _ := runArgs("--json", "129.42.38.10")
	require.Equal(t, exitOK, code)

	var got []structs.ASPrefix
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 3)
	expected := structs.ASPrefix{
		Prefix: "129.32.0.0/11", IP: "129.32.0.0", CIDR: 11,
		ASN:  structs.ASN{ASN: 3356, Name: "ISSC-AS", Description: "IBM Corporation", CountryCode: "US"},
		Name: "ISSC-AS", Description: "IBM Corporation", CountryCode: "US",
	}
	if diff := cmp.Diff(expected, got[2]); diff != "" {
		t.Fatal(diff)
	}
}

func TestRunServerStatus(t *testing.T) {
	setProvider(t, strings.Replace(ibmResponse, `"status": "ok"`, `"status": "error"`, 1))

	for _, args := range [][]string{{"129.42.38.10"}, {"-v", "129.42.38.10"}} {
		code, stdout, stderr := runArgs(args...)
		assert.Equal(t, exitUnavailable, code)
		assert.Empty(t, stdout)
		assert.Equal(t, "Error: Server responded error\n", stderr)
	}
}

func TestRunConnectFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	orig := provider
	provider = server.URL
	defer func() { provider = orig }()

	code, stdout, stderr := runArgs("129.42.38.10")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "Error: Could not connect to provider: "), stderr)
}

func TestRunInvalidJSON(t *testing.T) {
	setProvider(t, "Service Unavailable")

	code, stdout, stderr := runArgs("-v", "129.42.38.10")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "Error: Could not parse response: "), stderr)
	assert.True(t, strings.HasSuffix(stderr, ", Service Unavailable\n"), stderr)
}

func TestRunMissingField(t *testing.T) {
	setProvider(t, strings.Replace(ibmResponse, `, "country_code": "US"}`, `}`, 1))

	code, stdout, stderr := runArgs("129.42.38.10")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Could not parse response: missing field `data.prefixes[0].asn.country_code`")
}

func TestRunNoPrefixes(t *testing.T) {
	setProvider(t, `{"status": "ok", "status_message": "Query was successful", "data": {"prefixes": []}}`)

	code, stdout, stderr := runArgs("192.168.1.1")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Error: No AS information found\n", stderr)
}

func TestRunUsage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"129.42.38.10", "59.151.164.181"},
		{"--bogus", "129.42.38.10"},
		{"--timeout", "soon", "129.42.38.10"},
	} {
		code, stdout, stderr := runArgs(args...)
		assert.Equal(t, exitUsage, code, args)
		assert.Empty(t, stdout, args)
		assert.Contains(t, stderr, "Usage: asq", args)
	}
}

func TestRunHelpAndVersion(t *testing.T) {
	code, stdout, _ := runArgs("--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "--verbose")

	code, stdout, _ = runArgs("--version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "asq "+version+"\n", stdout)
}

func TestRunName(t *testing.T) {
	paths := setProvider(t, ibmResponse)
	addr := newDNSServer(t)

	code, stdout, stderr := runArgs("-n", "-r", addr, "ibm.com")
	assert.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "IBM-EI\n", stdout)
	assert.Equal(t, []string{"/ip/129.42.38.10"}, paths())

	code, stdout, stderr = runArgs("--name", "--resolver", addr, "nonexistent.example")
	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: Could not resolve nonexistent.example")
	assert.Len(t, paths(), 1)
}

func TestRunDebug(t *testing.T) {
	setProvider(t, ibmResponse)

	code, stdout, stderr := runArgs("-d", "129.42.38.10")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "IBM-EI\n", stdout)
	assert.Contains(t, stderr, "Lookup: resolve 129.42.38.10")

	code, _, stderr = runArgs("129.42.38.10")
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stderr)
}
