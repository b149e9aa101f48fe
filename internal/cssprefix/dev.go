package icp

import (
	"fmt"
	"net/http"
	"strconv"
)

func (c *Config) MustStartDev() {
	if err := c.Init(); err != nil {
		errMsg := fmt.Sprintf("error: invalid config: %v", err)
		c.Logger.Errorf("%s", errMsg)
		panic(errMsg)
	}

	if c.DevConfig == nil {
		c.DevConfig = &DevConfig{}
	}

	setModeToDev()

	port := c.DevConfig.RefreshServerPort
	if port == 0 {
		freePort, err := c.getFreePort(defaultFreePort)
		if err != nil {
			errMsg := fmt.Sprintf("error: failed to get free port for refresh server: %v", err)
			c.Logger.Errorf("%s", errMsg)
			panic(errMsg)
		}
		port = freePort
	}
	setRefreshServerPort(port)

	if err := c.Build(); err != nil {
		errMsg := fmt.Sprintf("error: failed to build styles: %v", err)
		c.Logger.Errorf("%s", errMsg)
		panic(errMsg)
	}

	if err := c.setupWatcher(); err != nil {
		errMsg := fmt.Sprintf("error: failed to set up watcher: %v", err)
		c.Logger.Errorf("%s", errMsg)
		panic(errMsg)
	}
	defer c.dev.watcher.Close()

	c.dev.manager = newClientManager()
	go c.dev.manager.start()
	go c.handleWatcherEmissions()

	c.Logger.Infof("initializing refresh server on port %d", port)

	if err := http.ListenAndServe(":"+strconv.Itoa(port), c.newRefreshMux()); err != nil {
		errMsg := fmt.Sprintf("error: failed to start refresh server: %v", err)
		c.Logger.Errorf("%s", errMsg)
		panic(errMsg)
	}
}

func (c *Config) newRefreshMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/events", sseHandler(c.dev.manager))

	mux.HandleFunc("/refresh-script", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "text/javascript")
		w.Write([]byte(getRefreshScriptInner(getRefreshServerPort())))
	})

	return mux
}
