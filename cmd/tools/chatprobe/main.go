package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
)

// chatprobe exercises a running MobiFix backend from the command line:
// it creates a conversation, submits one problem description (optionally
// with a screenshot) and prints the generated solution.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	baseURL := flag.String("addr", "http://localhost:8080", "backend base URL")
	platform := flag.String("platform", "android", "device platform: android or ios")
	device := flag.String("device", "", "device model, e.g. 'Pixel 8'")
	language := flag.String("lang", "en", "conversation language: en, ta or hi")
	text := flag.String("text", "", "problem description to submit")
	imagePath := flag.String("image", "", "optional screenshot or photo to attach")
	timeout := flag.Duration("timeout", 90*time.Second, "request timeout")

	flag.Parse()

	if strings.TrimSpace(*text) == "" && *imagePath == "" {
		flag.Usage()
		log.Fatal("provide a problem via -text and/or -image")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(*baseURL, "/")).
		SetTimeout(*timeout).
		SetHeader("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conversationID := createConversation(ctx, client, *platform, *device, *language)
	log.Printf("conversation created: id=%s platform=%s language=%s", conversationID, *platform, *language)

	submit(ctx, client, conversationID, *text, *imagePath)
}

func createConversation(ctx context.Context, client *resty.Client, platform, device, language string) string {
	resp, err := client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"platform":    platform,
			"deviceModel": device,
			"language":    language,
		}).
		Post("/api/conversations")
	if err != nil {
		log.Fatalf("create conversation failed: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		log.Fatalf("create conversation failed, status=%d body=%s", resp.StatusCode(), resp.Body())
	}

	var conversation struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &conversation); err != nil {
		log.Fatalf("could not parse conversation response: %v", err)
	}
	return conversation.ID
}

func submit(ctx context.Context, client *resty.Client, conversationID, text, imagePath string) {
	body := map[string]any{"text": text}

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			log.Fatalf("could not read image: %v", err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(imagePath))
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		body["image"] = map[string]any{"mimeType": mimeType, "data": data}
		log.Printf("attaching image: %s (%d bytes, %s)", imagePath, len(data), mimeType)
	}

	resp, err := client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/api/conversations/%s/messages", conversationID))
	if err != nil {
		log.Fatalf("submit failed: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		log.Fatalf("submit failed, status=%d body=%s", resp.StatusCode(), resp.Body())
	}

	var result struct {
		Assistant *struct {
			Content string `json:"content"`
			Failed  bool   `json:"failed"`
		} `json:"assistant"`
		Fallback bool `json:"fallback"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Fatalf("could not parse submit response: %v", err)
	}

	if result.Assistant == nil {
		log.Fatal("no assistant answer in response")
	}
	if result.Fallback {
		log.Printf("generation fell back to the apology text")
	}

	fmt.Println(result.Assistant.Content)
}
