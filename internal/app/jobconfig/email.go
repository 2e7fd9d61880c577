package jobconfig

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
)

// Resolver is the subset of *net.Resolver used to check mail domains.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// EmailVerifier checks address syntax and, optionally, that the domain accepts
// mail. Domain lookups are cached.
type EmailVerifier struct {
	validate            *validator.Validate
	resolver            Resolver
	checkDeliverability bool
	domains             *cache.Cache
}

func NewEmailVerifier(resolver Resolver, checkDeliverability bool) *EmailVerifier {
	return &EmailVerifier{
		validate:            validator.New(),
		resolver:            resolver,
		checkDeliverability: checkDeliverability,
		domains:             cache.New(10*time.Minute, 30*time.Minute),
	}
}

func (v *EmailVerifier) Verify(ctx context.Context, address string) error {
	if err := v.validate.Var(address, "required,email"); err != nil {
		return &EmailError{Address: address, Reason: "invalid address syntax"}
	}
	if !v.checkDeliverability {
		return nil
	}

	domain := strings.ToLower(address[strings.LastIndex(address, "@")+1:])
	if ok, found := v.domains.Get(domain); found {
		if ok.(bool) {
			return nil
		}
		return &EmailError{Address: address, Reason: "domain does not accept mail"}
	}

	ok, err := v.acceptsMail(ctx, domain)
	if err != nil {
		return &EmailError{Address: address, Reason: err.Error()}
	}
	v.domains.SetDefault(domain, ok)
	if !ok {
		return &EmailError{Address: address, Reason: "domain does not accept mail"}
	}
	return nil
}

// acceptsMail looks for MX records, falling back to address records. Temporary
// DNS failures are returned as errors so they are not cached.
func (v *EmailVerifier) acceptsMail(ctx context.Context, domain string) (bool, error) {
	mxs, err := v.resolver.LookupMX(ctx, domain)
	if err == nil && len(mxs) > 0 {
		// RFC 7505 null MX
		if len(mxs) == 1 && (mxs[0].Host == "." || mxs[0].Host == "") {
			return false, nil
		}
		return true, nil
	}
	if temporary(err) {
		return false, err
	}
	addrs, err := v.resolver.LookupHost(ctx, domain)
	if temporary(err) {
		return false, err
	}
	return err == nil && len(addrs) > 0, nil
}

func temporary(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsTemporary
}
