// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"errors"
	"net/http"
	"net/netip"
)

var errMissingClientIP = errors.New("could not determine client IP")

// ClientInfo is the address and network of the client behind a request.
//
// Instances are ephemeral and exist only for the duration of a single HTTP request lifecycle.
type ClientInfo struct {
	ip      netip.Addr
	network netip.Prefix
	limiter *limiterWrapper
}

func (l *Limiter) newClientInfo(r *http.Request) (*ClientInfo, error) {
	addr, ok := getClientIP(r)
	if !ok {
		return nil, errMissingClientIP
	}

	return &ClientInfo{
		ip:      addr,
		network: getNetwork(addr, l.opts.IPv4Prefix, l.opts.IPv6Prefix),
	}, nil
}

// checkIPLists checks if the client's IP is on the pass or block list.
//
// Returns (allowed, blocked); at most one is true.
func (l *Limiter) checkIPLists(c *ClientInfo) (bool, bool) {
	if ipMatchesList(c.ip, l.opts.PassIPs) {
		return true, false
	}

	if ipMatchesList(c.ip, l.opts.BlockIPs) {
		return false, true
	}

	return false, false
}

// isLocal returns true if c.ip is a loopback or link-local address.
func (c *ClientInfo) isLocal() bool {
	return c.ip.IsLoopback() || c.ip.IsLinkLocalUnicast()
}
