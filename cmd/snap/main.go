// snap takes a photo through a running capture daemon and saves the JPEG.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-capture/internal/httpc"
	"github.com/teslashibe/go-capture/pkg/photo"
	"github.com/teslashibe/go-capture/pkg/web"
)

func main() {
	server := flag.String("server", "http://localhost:8090", "Capture daemon base URL")
	out := flag.String("out", "shot.jpg", "Output file for the encoded photo")
	orientation := flag.String("orientation", "", "portrait, portrait_upside_down, landscape_left, landscape_right")
	flash := flag.String("flash", "", "off, on, auto")
	live := flag.Bool("live", false, "Request a live photo clip alongside the still")
	verbose := flag.Bool("v", false, "Print every capture stage")
	flag.Parse()

	if err := run(*server, *out, *orientation, *flash, *live, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(server, out, orientation, flash string, live, verbose bool) error {
	var started struct {
		CaptureID string `json:"capture_id"`
	}
	req := web.CaptureRequest{Orientation: orientation, Flash: flash, LivePhoto: live}
	if err := httpc.PostJSON(server+"/api/capture", req, &started); err != nil {
		return err
	}
	if verbose {
		fmt.Println("capture", started.CaptureID)
	}

	wsURL, err := captureStreamURL(server, started.CaptureID)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	var data []byte
	for {
		var stage web.StageEvent
		if err := conn.ReadJSON(&stage); err != nil {
			// The daemon closes the stream after the terminal stage; a close
			// before that is an error only if we never got the photo.
			break
		}
		if verbose {
			fmt.Println("stage", stage.Kind)
		}
		if stage.Error != "" {
			fmt.Fprintln(os.Stderr, "stage", stage.Kind+":", stage.Error)
		}
		if stage.DataBase64 != "" {
			data, err = base64.StdEncoding.DecodeString(stage.DataBase64)
			if err != nil {
				return fmt.Errorf("decode photo data: %w", err)
			}
		}
		if stage.LivePhotoPath != "" {
			fmt.Printf("live photo: %s (%.1fs)\n", stage.LivePhotoPath, stage.LivePhotoDuration)
		}
		if stage.Kind == string(photo.StageDidFinishCapture) {
			break
		}
	}

	if len(data) == 0 {
		return fmt.Errorf("capture %s produced no photo data", started.CaptureID)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("saved %s (%d bytes)\n", out, len(data))
	return nil
}

// captureStreamURL converts the HTTP base URL into the websocket endpoint
// for one capture's stage stream.
func captureStreamURL(server, id string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/captures/" + id
	return u.String(), nil
}
