package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"example.com/scholarshield/backend/internal/search"
)

func main() {
	var (
		file       = flag.String("file", "", "path to the handbook file (required)")
		university = flag.String("university", "", "university name for source attribution (required)")
		serverURL  = flag.String("server", "http://localhost:8080", "base URL of the running backend")
		timeout    = flag.Duration("timeout", 2*time.Minute, "upload timeout")
	)
	flag.Parse()

	if *file == "" || *university == "" {
		fmt.Fprintln(os.Stderr, `usage: handbook-index -file handbook.txt -university "State University" [-server http://localhost:8080]`)
		os.Exit(2)
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read handbook: %v\n", err)
		os.Exit(1)
	}

	// Предпросмотр разбивки до загрузки, чтобы сразу видеть пустые справочники.
	chunks := search.ParseHandbook(string(content), *university)
	fmt.Printf("parsed %d chunks from %s\n", len(chunks), filepath.Base(*file))
	if len(chunks) > 0 {
		preview := chunks[0].Content
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		fmt.Printf("first chunk [%s]: %s\n", chunks[0].Section, preview)
	}

	indexName, numChunks, err := upload(*serverURL, *file, *university, content, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload handbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created index %s with %d chunks\n", indexName, numChunks)
	fmt.Printf("pass it to assessments as university_index=%s\n", indexName)
}

func upload(serverURL, filename, university string, content []byte, timeout time.Duration) (string, int, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", 0, err
	}
	if _, err := part.Write(content); err != nil {
		return "", 0, err
	}
	if err := writer.WriteField("university_name", university); err != nil {
		return "", 0, err
	}
	if err := writer.Close(); err != nil {
		return "", 0, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(serverURL+"/api/v1/handbook", writer.FormDataContentType(), &body)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}

	if resp.StatusCode != http.StatusCreated {
		return "", 0, fmt.Errorf("server returned %d: %s", resp.StatusCode, payload)
	}

	var result struct {
		IndexName     string `json:"index_name"`
		ChunksIndexed int    `json:"chunks_indexed"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return "", 0, err
	}

	return result.IndexName, result.ChunksIndexed, nil
}
