package icp

import (
	"net"
	"strconv"
)

const (
	portSearchRange = 1024
	defaultFreePort = 10_000
	maxPort         = 65535
)

// getFreePort returns startPort if nothing is listening on it, else the
// first free port above it, else whatever the kernel hands out.
func (c *Config) getFreePort(startPort int) (int, error) {
	if startPort <= 0 {
		startPort = defaultFreePort
	}

	for port := startPort; port < startPort+portSearchRange && port <= maxPort; port++ {
		if !getIsPortFree(port) {
			continue
		}
		if port != startPort {
			c.Logger.Warnf("refresh server port %d unavailable: falling back to port %d", startPort, port)
		}
		return port, nil
	}

	return getKernelAssignedPort()
}

func getIsPortFree(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

func getKernelAssignedPort() (int, error) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
