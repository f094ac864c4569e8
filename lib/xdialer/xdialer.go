package xdialer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
	"golang.org/x/xerrors"
)

type Dialer = proxy.Dialer

// XDial builds dialer from proxy chain spec.
// Spec is socks5://[user:pass@]host:port, optionally followed by
// /socks5://next-hop... Empty spec gives direct dialer.
func XDial(spec string) (d Dialer, err error) {
	d = &net.Dialer{}
	for spec != "" {
		u, e := url.Parse(spec)
		if e != nil {
			return nil, xerrors.Errorf("bad proxy spec %q: %w", spec, e)
		}
		if u.Scheme != "socks" && u.Scheme != "socks5" {
			return nil, xerrors.Errorf("unsupported proxy scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return nil, errors.New("no proxy host specified")
		}
		var a *proxy.Auth
		if u.User != nil {
			a = &proxy.Auth{User: u.User.Username()}
			a.Password, _ = u.User.Password()
		}
		d, e = proxy.SOCKS5("tcp", u.Host, a, d)
		if e != nil {
			return nil, xerrors.Errorf("SOCKS5 error: %w", e)
		}
		spec = strings.TrimPrefix(u.Path, "/")
	}
	return
}

// Transport returns HTTP transport dialing through spec.
func Transport(spec string) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if spec == "" {
		return t, nil
	}
	d, err := XDial(spec)
	if err != nil {
		return nil, err
	}
	t.Proxy = nil
	if cd, ok := d.(proxy.ContextDialer); ok {
		t.DialContext = cd.DialContext
	} else {
		t.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return d.Dial(network, addr)
		}
	}
	return t, nil
}
