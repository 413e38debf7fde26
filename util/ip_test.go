package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testInternalSubnets = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"fc00::/7",
}

func TestParseSubnets(t *testing.T) {
	parsed, err := ParseSubnets(testInternalSubnets)
	assert.Nil(t, err)
	assert.Len(t, parsed, 4)

	// bare IPs pick up a host mask
	parsed, err = ParseSubnets([]string{"8.8.8.8", "2001:4860:4860::8888"})
	assert.Nil(t, err)
	assert.Equal(t, "8.8.8.8/32", parsed[0].String())
	assert.Equal(t, "2001:4860:4860::8888/128", parsed[1].String())

	_, err = ParseSubnets([]string{"not-a-subnet"})
	assert.NotNil(t, err)
}

func TestContainsIP(t *testing.T) {
	subnets, err := ParseSubnets(testInternalSubnets)
	assert.Nil(t, err)

	assert.True(t, ContainsIP(subnets, net.ParseIP("10.1.2.3")))
	assert.True(t, ContainsIP(subnets, net.ParseIP("172.16.0.1")))
	assert.True(t, ContainsIP(subnets, net.ParseIP("192.168.100.200")))
	assert.True(t, ContainsIP(subnets, net.ParseIP("fd00::1")))
	assert.False(t, ContainsIP(subnets, net.ParseIP("1.1.1.1")))
	assert.False(t, ContainsIP(subnets, net.ParseIP("2606:4700::1111")))
}

func TestIsLocalAddress(t *testing.T) {
	subnets, err := ParseSubnets(testInternalSubnets)
	assert.Nil(t, err)

	local := []string{
		"127.0.0.1",
		"::1",
		"169.254.12.13",
		"fe80::1",
		"10.55.66.77",
		"192.168.1.1",
		"fd12:3456::1",
		"0.0.0.0",
		"",            // no remote endpoint
		"not-an-ip",   // malformed OS data
	}
	for _, addr := range local {
		assert.True(t, IsLocalAddress(addr, subnets), addr)
	}

	public := []string{
		"8.8.8.8",
		"104.16.0.1",
		"2606:4700::1111",
	}
	for _, addr := range public {
		assert.False(t, IsLocalAddress(addr, subnets), addr)
	}
}

func TestIsIP(t *testing.T) {
	assert.True(t, IsIP("1.1.1.1"))
	assert.True(t, IsIP("fe80::1"))
	assert.False(t, IsIP("a.b.c.d"))
}
