package icp

import (
	"fmt"
	"os"
	"strconv"
)

const (
	modeKey              = "CSSPREFIX_ENV_MODE"
	devModeVal           = "development"
	refreshServerPortKey = "CSSPREFIX_ENV_REFRESH_SERVER_PORT"
)

func GetIsDev() bool {
	return os.Getenv(modeKey) == devModeVal
}

func setModeToDev() {
	os.Setenv(modeKey, devModeVal)
}

func getRefreshServerPort() int {
	port, err := strconv.Atoi(os.Getenv(refreshServerPortKey))
	if err != nil {
		return 0
	}
	return port
}

func setRefreshServerPort(port int) {
	os.Setenv(refreshServerPortKey, fmt.Sprintf("%d", port))
}
