package agent

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

type listenTarget struct {
	network string
	address string
}

func parseListenAddr(addr string) (listenTarget, error) {
	value := strings.TrimSpace(addr)
	if value == "" {
		return listenTarget{}, fmt.Errorf("listen address cannot be empty")
	}
	if strings.HasPrefix(value, "unix://") {
		path := strings.TrimPrefix(value, "unix://")
		if path == "" {
			return listenTarget{}, fmt.Errorf("unix socket path cannot be empty")
		}
		return listenTarget{network: "unix", address: path}, nil
	}
	return listenTarget{network: "tcp", address: value}, nil
}

// dialTarget turns a listen style address into a gRPC dial target.
func dialTarget(addr string) (string, error) {
	target, err := parseListenAddr(addr)
	if err != nil {
		return "", err
	}
	if target.network == "unix" {
		return "unix://" + target.address, nil
	}
	return "passthrough:///" + target.address, nil
}

// Listen opens the listener an agent server is served on. Stale unix
// sockets are removed first.
func Listen(addr string) (net.Listener, error) {
	target, err := parseListenAddr(addr)
	if err != nil {
		return nil, err
	}
	if target.network == "unix" {
		if err := os.Remove(target.address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}
	lis, err := net.Listen(target.network, target.address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return lis, nil
}
