package models_test

import (
	"errors"
	"net"
	"strconv"
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

func TestNetworkSettingValidation(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)

	tests := []struct {
		name  string
		input models.NewNetworkSetting
		field string
	}{
		{"missing address", models.NewNetworkSetting{}, "ip_address"},
		{"octet out of range", models.NewNetworkSetting{IPAddress: "10.0.0.256"}, "ip_address"},
		{"bad mask", models.NewNetworkSetting{IPAddress: "10.0.0.1", SubnetMask: "255.255.0"}, "subnet_mask"},
		{"bad dns entry", models.NewNetworkSetting{IPAddress: "10.0.0.1", DNSServers: "8.8.8.8, dns.local"}, "dns_servers"},
	}
	for _, tt := range tests {
		input := tt.input
		_, err := models.CreateNetworkSetting(ctx, &input)
		var validationErr *utils.ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != tt.field {
			t.Fatalf("%s: err = %v, want ValidationError on %s", tt.name, err, tt.field)
		}
	}
}

func TestNetworkSettingUniqueAddress(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)

	created, err := models.CreateNetworkSetting(ctx, &models.NewNetworkSetting{
		IPAddress:  "192.168.1.10",
		DNSServers: " 8.8.8.8 ,, 1.1.1.1 ",
	})
	if err != nil {
		t.Fatalf("CreateNetworkSetting: %v", err)
	}
	if created.DNSServers != "8.8.8.8, 1.1.1.1" {
		t.Fatalf("dns servers = %q, want normalized list", created.DNSServers)
	}

	_, err = models.CreateNetworkSetting(ctx, &models.NewNetworkSetting{IPAddress: "192.168.1.10"})
	var uniqueErr *utils.UniqueError
	if !errors.As(err, &uniqueErr) || uniqueErr.Field != "ip_address" {
		t.Fatalf("duplicate address err = %v, want UniqueError on ip_address", err)
	}
}

func TestProbeNetworkSetting(t *testing.T) {
	newTestStore(t)
	ctx, _ := adminContext(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	port := listener.Addr().(*net.TCPAddr).Port
	t.Setenv("PROBE_PORT", strconv.Itoa(port))
	t.Setenv("PROBE_TIMEOUT_SECONDS", "2")

	setting, err := models.CreateNetworkSetting(ctx, &models.NewNetworkSetting{IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("CreateNetworkSetting: %v", err)
	}

	result, err := models.ProbeNetworkSetting(ctx, setting.ID)
	if err != nil {
		t.Fatalf("ProbeNetworkSetting: %v", err)
	}
	if !result.Reachable || result.Port != port {
		t.Fatalf("probe result = %+v, want reachable on %d", result, port)
	}

	// once the listener is gone the probe reports the address as unreachable, not as an error
	listener.Close()
	result, err = models.ProbeNetworkSetting(ctx, setting.ID)
	if err != nil {
		t.Fatalf("ProbeNetworkSetting after close: %v", err)
	}
	if result.Reachable || result.Error == "" {
		t.Fatalf("probe result = %+v, want unreachable with an error message", result)
	}
}
