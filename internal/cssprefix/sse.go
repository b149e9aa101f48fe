package icp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

// clientManager manages all SSE clients
type clientManager struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan refreshPayload
}

// client represents a single SSE connection
type client struct {
	id     string
	notify chan refreshPayload
}

type changeType string

const (
	changeTypeNormalCSS   changeType = "normal"
	changeTypeCriticalCSS changeType = "critical"
)

type refreshPayload struct {
	ChangeType   changeType `json:"changeType"`
	CriticalCSS  string     `json:"criticalCss,omitempty"` // base64
	NormalCSSURL string     `json:"normalCssUrl,omitempty"`
	At           time.Time  `json:"at"`
}

func newClientManager() *clientManager {
	return &clientManager{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan refreshPayload),
	}
}

// start handles clients and broadcasting until the process exits
func (manager *clientManager) start() {
	for {
		select {
		case client := <-manager.register:
			manager.clients[client] = true
		case client := <-manager.unregister:
			if _, ok := manager.clients[client]; ok {
				delete(manager.clients, client)
				close(client.notify)
			}
		case msg := <-manager.broadcast:
			for client := range manager.clients {
				select {
				case client.notify <- msg:
				default:
					// slow client, it will pick up the next one
				}
			}
		}
	}
}

func sseHandler(manager *clientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		client := &client{id: r.RemoteAddr, notify: make(chan refreshPayload, 1)}
		manager.register <- client
		defer func() {
			manager.unregister <- client
		}()

		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for {
			select {
			case msg, ok := <-client.notify:
				if !ok {
					return
				}
				data, err := json.Marshal(msg)
				if err != nil {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}

func (c *Config) broadcastChange(subDir string) {
	if c.dev.manager == nil {
		return
	}
	payload := refreshPayload{At: time.Now()}
	switch subDir {
	case criticalSubDir:
		payload.ChangeType = changeTypeCriticalCSS
		payload.CriticalCSS = base64.StdEncoding.EncodeToString([]byte(c.GetCriticalCSS()))
	case normalSubDir:
		payload.ChangeType = changeTypeNormalCSS
		payload.NormalCSSURL = c.GetStyleSheetURL()
	default:
		return
	}
	c.dev.manager.broadcast <- payload
}

// GetRefreshScript returns a script element that hot-swaps the scoped
// styles while in dev mode. Outside dev mode it returns "".
func GetRefreshScript() template.HTML {
	if !GetIsDev() {
		return ""
	}
	return template.HTML("\n<script>\n" + getRefreshScriptInner(getRefreshServerPort()) + "\n</script>")
}

func getRefreshScriptInner(port int) string {
	return fmt.Sprintf(refreshScriptFmt, port, CriticalCSSElementID, StyleSheetElementID)
}

const refreshScriptFmt = `
const es = new EventSource("http://localhost:%d/events");

function base64ToUTF8(base64) {
	const bytes = Uint8Array.from(atob(base64), (m) => m.codePointAt(0) || 0);
	return new TextDecoder().decode(bytes);
}

es.onmessage = (e) => {
	const { changeType, criticalCss, normalCssUrl } = JSON.parse(e.data);
	if (changeType == "critical") {
		const oldStyle = document.getElementById("%[2]s");
		const newStyle = document.createElement("style");
		newStyle.id = "%[2]s";
		newStyle.innerHTML = base64ToUTF8(criticalCss || "");
		if (oldStyle) oldStyle.replaceWith(newStyle);
		else document.head.appendChild(newStyle);
	}
	if (changeType == "normal") {
		const oldLink = document.getElementById("%[3]s");
		const newLink = document.createElement("link");
		newLink.id = "%[3]s";
		newLink.rel = "stylesheet";
		newLink.href = normalCssUrl;
		if (oldLink) {
			newLink.onload = () => oldLink.remove();
			oldLink.parentNode.insertBefore(newLink, oldLink.nextSibling);
		} else {
			document.head.appendChild(newLink);
		}
	}
};

window.addEventListener("beforeunload", () => es.close());
`
