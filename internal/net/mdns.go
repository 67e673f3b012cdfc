package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"
)

const ServiceType = "_classboard._tcp"

var ErrNoPresenter = errors.New("no presenter found on the local network")

// Advertise announces the presenter's mirror endpoint on the LAN.
// Close the returned server with Shutdown.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"ClassroomBoard"}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses for a presenter and returns the first host:port found.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() {
		errc <- mdns.Query(params)
		close(entries)
	}()

	select {
	case addr := <-found:
		return addr, nil
	case err := <-errc:
		<-readerDone
		select {
		case addr := <-found:
			return addr, nil
		default:
		}
		if err != nil {
			return "", errors.Wrap(err, "mdns query")
		}
		return "", ErrNoPresenter
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
