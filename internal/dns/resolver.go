// =============================================================================
// internal/dns/resolver.go - Minimal A/AAAA resolution against a custom
// nameserver, used by the address expander when --nameserver is given.
// =============================================================================
package dns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Resolver handles DNS queries against a specific nameserver.
type Resolver struct {
	client  *dns.Client
	options QueryOptions
}

// NewResolver creates a new DNS resolver with default options.
func NewResolver() *Resolver {
	return &Resolver{
		client: &dns.Client{Timeout: 5 * time.Second},
		options: QueryOptions{
			Timeout:      5 * time.Second,
			Retries:      3,
			UseRecursion: true,
		},
	}
}

// NewResolverWithOptions creates a resolver with custom options.
func NewResolverWithOptions(opts QueryOptions) *Resolver {
	return &Resolver{
		client: &dns.Client{Timeout: opts.Timeout},
		options: opts,
	}
}

// Query performs a DNS query for domain against nameserver, making up to
// options.Retries attempts in total with a linearly growing pause between
// them.
func (r *Resolver) Query(ctx context.Context, domain string, recordType DNSRecordType, nameserver string) (*DNSResult, error) {
	start := time.Now()

	result := &DNSResult{
		Query: DNSQuery{
			Domain:       domain,
			RecordType:   recordType,
			Nameserver:   nameserver,
			Timeout:      r.options.Timeout,
			UseRecursion: r.options.UseRecursion,
		},
		Timestamp:  start,
		Nameserver: nameserver,
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), r.getRecordTypeCode(recordType))
	msg.RecursionDesired = r.options.UseRecursion

	if !strings.Contains(nameserver, ":") {
		nameserver += ":53"
	}

	var response *dns.Msg
	var err error
	for attempt := 0; attempt < r.options.Retries; attempt++ {
		response, _, err = r.client.ExchangeContext(ctx, msg, nameserver)
		if err == nil {
			break
		}
		if attempt < r.options.Retries-1 {
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		}
	}

	result.ResponseTime = time.Since(start)

	if err != nil {
		result.Error = fmt.Errorf("dns query failed: %w", err)
		return result, result.Error
	}
	if response == nil {
		result.Error = fmt.Errorf("received nil response")
		return result, result.Error
	}

	result.Records = r.parseResponse(response, recordType)
	return result, nil
}

func (r *Resolver) parseResponse(response *dns.Msg, recordType DNSRecordType) []DNSRecord {
	var records []DNSRecord
	for _, answer := range response.Answer {
		record := DNSRecord{
			Name: answer.Header().Name,
			Type: recordType,
			TTL:  answer.Header().Ttl,
		}

		switch rr := answer.(type) {
		case *dns.A:
			record.Value = rr.A.String()
		case *dns.AAAA:
			record.Value = rr.AAAA.String()
		case *dns.CNAME:
			record.Value = rr.Target
		default:
			record.Value = answer.String()
		}

		records = append(records, record)
	}
	return records
}

func (r *Resolver) getRecordTypeCode(recordType DNSRecordType) uint16 {
	switch recordType {
	case RecordTypeA:
		return dns.TypeA
	case RecordTypeAAAA:
		return dns.TypeAAAA
	case RecordTypeCNAME:
		return dns.TypeCNAME
	default:
		return dns.TypeA
	}
}
