package collector

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"os"

	"sysmon/internal/model"
)

// Network reads the host's network identity. Hostname and primary IP
// resolution failures are fatal for the category; the MAC address degrades
// to a derived identifier on hosts without one. A single interface that
// cannot report its addresses is skipped and enumeration continues.
func (c *Collector) Network(ctx context.Context) (model.NetworkData, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return model.NetworkData{}, fmt.Errorf("resolving hostname: %w", err)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return model.NetworkData{}, fmt.Errorf("enumerating interfaces: %w", err)
	}

	mac, err := nodeMAC(ifaces)
	if err != nil {
		return model.NetworkData{}, err
	}

	ip, err := primaryIP(ifaces)
	if err != nil {
		return model.NetworkData{}, err
	}

	addrs := make(map[string][]model.NetworkAddress, len(ifaces))
	for _, iface := range ifaces {
		ifaceAddrs, err := iface.Addrs()
		if err != nil {
			c.logger.V(1).Info("skipping interface", "name", iface.Name, "error", err)
			continue
		}

		entries := make([]model.NetworkAddress, 0, len(ifaceAddrs)+1)
		for _, addr := range ifaceAddrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			entries = append(entries, model.NetworkAddress{
				Address: ipnet.IP.String(),
				Netmask: netmaskString(ipnet.Mask),
				Family:  addressFamily(ipnet.IP),
			})
		}
		if len(iface.HardwareAddr) > 0 {
			entries = append(entries, model.NetworkAddress{
				Address: iface.HardwareAddr.String(),
				Family:  "link",
			})
		}
		addrs[iface.Name] = entries
	}

	return model.NetworkData{
		Hostname:   hostname,
		IPAddress:  ip,
		MACAddress: mac,
		Interfaces: addrs,
	}, nil
}

// nodeMAC picks the hardware address that identifies this node: the first
// enumerated non-loopback interface that has one. net.HardwareAddr renders
// as lower-case colon-separated hex octets. Hosts with only loopback
// interfaces (containers, minimal network namespaces) have no hardware
// address at all; those get a random locally-administered identifier in the
// style of an RFC 4122 node ID instead, so the category does not fail every
// cycle on such hosts.
func nodeMAC(ifaces []net.Interface) (string, error) {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) > 0 {
			return iface.HardwareAddr.String(), nil
		}
	}
	return randomNodeMAC()
}

// randomNodeMAC generates a 48-bit node identifier with the multicast bit
// set, marking it as not belonging to real hardware.
func randomNodeMAC() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("deriving node identifier: %w", err)
	}
	buf[0] |= 0x01
	return net.HardwareAddr(buf).String(), nil
}

// primaryIP finds the host's primary IPv4 address: the local side of a UDP
// socket to a public address when routing is up, otherwise the first global
// unicast IPv4 on any interface.
func primaryIP(ifaces []net.Interface) (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String(), nil
		}
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil && ipnet.IP.IsGlobalUnicast() {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "", fmt.Errorf("resolving primary ip: no global unicast IPv4 address found")
}

func addressFamily(ip net.IP) string {
	if ip.To4() != nil {
		return "inet"
	}
	return "inet6"
}

func netmaskString(mask net.IPMask) string {
	if len(mask) == net.IPv4len {
		return net.IP(mask).String()
	}
	return mask.String()
}
