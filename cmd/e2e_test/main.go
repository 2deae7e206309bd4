package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if v := os.Getenv("BASE_URL"); v != "" {
		baseURL = v
	}
	csvPath := "testdata/portfolioinputs.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	checkEndpoint("/health", 200)
	checkEndpoint("/languages", 200)
	checkEndpoint("/titles?lang=ta", 200)

	id := uploadCSV(csvPath)
	fmt.Printf("Uploaded source: %s\n", id)
	q := "source=" + url.QueryEscape(id)

	body := checkEndpoint("/dashboard?group_by=sector&"+q, 200)
	var rep struct {
		Condition string `json:"condition"`
	}
	if err := json.Unmarshal(body, &rep); err != nil {
		log.Fatalf("decode dashboard: %v", err)
	}
	if rep.Condition != "ok" {
		log.Fatalf("expected condition ok, got %s", rep.Condition)
	}

	checkEndpoint("/dashboard?broker=__none__&"+q, 200)
	checkEndpoint("/dashboard?group_by=isin", 400)
	png := checkEndpoint("/allocation.png?allocate_by=broker&"+q, 200)
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		log.Fatal("allocation chart is not a PNG")
	}
	checkEndpoint("/report?lang=ta&"+q, 200)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(path string, expectedStatus int) []byte {
	fmt.Printf("Testing GET %s...\n", path)
	resp, err := http.Get(baseURL + path)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	if resp.Header.Get("Content-Type") != "image/png" && len(respBody) < 512 {
		fmt.Printf("Response: %s\n", string(respBody))
	}
	return respBody
}

func uploadCSV(path string) string {
	fmt.Printf("Uploading %s...\n", path)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "portfolio.csv")
	fw.Write(data)
	mw.Close()

	resp, err := http.Post(baseURL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		log.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(b))
	}
	var res struct {
		SourceID string `json:"source_id"`
		Rows     int    `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Fatalf("decode upload response: %v", err)
	}
	fmt.Printf("Upload accepted: %d rows\n", res.Rows)
	return res.SourceID
}
