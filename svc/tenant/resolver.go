package tenant

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Tenant identifiers carried in requests are either a UUID or a subdomain
// label, so the DNS label limit bounds both.
const maxIdentifierLength = 63

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// IdentifierResolver extracts a tenant identifier from an HTTP request.
// An empty string with a nil error means the request carries no identifier.
type IdentifierResolver func(r *http.Request) (string, error)

func validIdentifier(id string) bool {
	return id != "" && len(id) <= maxIdentifierLength && identifierPattern.MatchString(id)
}

// HeaderResolver reads the identifier from a request header, X-Tenant-ID
// when name is empty.
func HeaderResolver(name string) IdentifierResolver {
	if name == "" {
		name = "X-Tenant-ID"
	}
	return func(r *http.Request) (string, error) {
		v := strings.TrimSpace(r.Header.Get(name))
		if v == "" {
			return "", nil
		}
		if !validIdentifier(v) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, v)
		}
		return v, nil
	}
}

// PathResolver reads the identifier from the 1-based path segment, so
// position 2 matches /tenants/{id}/....
func PathResolver(position int) IdentifierResolver {
	return func(r *http.Request) (string, error) {
		if position < 1 {
			return "", fmt.Errorf("%w: path position %d", ErrInvalidIdentifier, position)
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if position > len(parts) {
			return "", nil
		}
		v := strings.TrimSpace(parts[position-1])
		if v == "" {
			return "", nil
		}
		if !validIdentifier(v) {
			return "", fmt.Errorf("%w: path segment %q", ErrInvalidIdentifier, v)
		}
		return v, nil
	}
}

// SubdomainResolver reads the identifier from the request host's first
// label, stripping the given base-domain suffix and an optional www prefix.
// Hosts without a subdomain resolve to empty.
func SubdomainResolver(suffix string) IdentifierResolver {
	suffix = strings.TrimPrefix(suffix, ".")
	return func(r *http.Request) (string, error) {
		host := r.Host
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}
		// Strip www before any structural check so that www.domain.tld
		// counts as a bare domain, not as the subdomain "www".
		host = strings.TrimPrefix(host, "www.")

		if suffix != "" {
			if !strings.HasSuffix(host, "."+suffix) {
				return "", nil
			}
			host = strings.TrimSuffix(host, "."+suffix)
		} else if strings.Count(host, ".") < 2 {
			// Bare domain.tld carries no subdomain.
			return "", nil
		}

		label := strings.Split(host, ".")[0]
		if label == "" {
			return "", nil
		}
		if !validIdentifier(label) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, label)
		}
		return label, nil
	}
}

// ChainResolver tries each resolver in order and returns the first non-empty
// identifier. A resolver error stops the chain.
func ChainResolver(resolvers ...IdentifierResolver) IdentifierResolver {
	return func(r *http.Request) (string, error) {
		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				return "", err
			}
			if id != "" {
				return id, nil
			}
		}
		return "", nil
	}
}
