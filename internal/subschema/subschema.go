// Package subschema reads the schema a directory server publishes in its
// subschema subentry (RFC 4512 section 4.2).
package subschema

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/logging"
	"github.com/KilimcininKorOglu/obaschema/internal/schemafile"
)

// DefaultDN is used when the root DSE does not name a subschema subentry.
const DefaultDN = "cn=Subschema"

// ErrNoSubschema is returned when the subschema entry cannot be read.
var ErrNoSubschema = errors.New("subschema entry not found")

// Searcher is the part of *ldap.Conn the fetcher needs.
type Searcher interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
}

// attributes lists the subschema attributes in the order their values
// must be ingested: syntaxes and matching rules are referenced by
// attribute types, which are referenced by object classes.
var attributes = []struct {
	name string
	kind schemafile.Kind
}{
	{"ldapSyntaxes", schemafile.KindSyntax},
	{"matchingRules", schemafile.KindMatchingRule},
	{"attributeTypes", schemafile.KindAttributeType},
	{"objectClasses", schemafile.KindObjectClass},
}

// SubschemaDN reads subschemaSubentry from the root DSE and falls back to
// DefaultDN when the server does not publish it.
func SubschemaDN(s Searcher) (string, error) {
	req := ldap.NewSearchRequest(
		"",
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		1, 0, false,
		"(objectClass=*)",
		[]string{"subschemaSubentry"},
		nil,
	)
	res, err := s.Search(req)
	if err != nil {
		return "", fmt.Errorf("root DSE search: %w", err)
	}
	if len(res.Entries) > 0 {
		if dn := res.Entries[0].GetEqualFoldAttributeValue("subschemaSubentry"); dn != "" {
			return dn, nil
		}
	}
	return DefaultDN, nil
}

// FetchFrom reads the subschema entry dn and returns one directive per
// description value. An empty dn is looked up in the root DSE. source
// names the server in directive locations.
func FetchFrom(ctx context.Context, s Searcher, dn, source string) ([]schemafile.Directive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dn == "" {
		var err error
		if dn, err = SubschemaDN(s); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := make([]string, len(attributes))
	for i, a := range attributes {
		names[i] = a.name
	}
	req := ldap.NewSearchRequest(
		dn,
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		1, 0, false,
		"(objectClass=subschema)",
		names,
		nil,
	)
	res, err := s.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, fmt.Errorf("%w: %s", ErrNoSubschema, dn)
		}
		return nil, fmt.Errorf("subschema search %s: %w", dn, err)
	}
	if len(res.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSubschema, dn)
	}

	entry := res.Entries[0]
	file := source + "/" + dn
	var out []schemafile.Directive
	for _, a := range attributes {
		for i, v := range entry.GetEqualFoldAttributeValues(a.name) {
			out = append(out, schemafile.Directive{
				Kind:    a.kind,
				Keyword: a.name,
				Text:    v,
				File:    file,
				// Line is the position of the value within its attribute.
				Line: i + 1,
			})
		}
	}
	return out, nil
}

// Fetch connects to cfg.URL, binds when a bind DN is configured and reads
// the subschema. The connection is closed when ctx is done.
func Fetch(ctx context.Context, cfg *config.FetchConfig, logger logging.Logger) ([]schemafile.Directive, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logger.WithFields("url", cfg.URL)

	conn, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if cfg.Timeout > 0 {
		conn.SetTimeout(cfg.Timeout)
	}

	if cfg.BindDN != "" {
		log.Debug("binding", "bind_dn", cfg.BindDN)
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("bind as %s: %w", cfg.BindDN, err)
		}
	}

	dirs, err := FetchFrom(ctx, conn, cfg.SubschemaDN, redactURL(cfg.URL))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	log.Info("subschema fetched", "definitions", len(dirs))
	return dirs, nil
}

func dial(cfg *config.FetchConfig) (*ldap.Conn, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", cfg.URL, err)
	}
	tlsConfig := &tls.Config{
		ServerName:         u.Hostname(),
		InsecureSkipVerify: cfg.Insecure, //nolint:gosec // opt-in for test servers
		MinVersion:         tls.VersionTLS12,
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: timeout})}
	if u.Scheme == "ldaps" {
		opts = append(opts, ldap.DialWithTLSConfig(tlsConfig))
	}

	conn, err := ldap.DialURL(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
	}
	if cfg.StartTLS {
		if err := conn.StartTLS(tlsConfig); err != nil {
			conn.Close()
			return nil, fmt.Errorf("StartTLS with %s: %w", cfg.URL, err)
		}
	}
	return conn, nil
}

// redactURL drops user info from an LDAP URL used in diagnostics.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}
