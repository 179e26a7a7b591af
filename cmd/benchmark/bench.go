// Load-tests a running arclight gateway with vegeta. Starts a local mock
// upstream speaking the OpenAI dialect so the gateway under test can be
// pointed at it without burning real tokens:
//
//	go run ./cmd/benchmark -target http://localhost:8080 -rate 100 -duration 30s -stream
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

var (
	streamChunks = [][]byte{
		[]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Bench\"}}]}\n\n"),
		[]byte("data: {\"choices\":[{\"delta\":{\"content\":\"mark\"}}]}\n\n"),
		[]byte("data: {\"choices\":[{\"delta\":{\"content\":\" response\"},\"finish_reason\":null}]}\n\n"),
	}
	streamDone = []byte("data: [DONE]\n\n")
	unaryResp  = []byte(`{"id":"bench-123","choices":[{"message":{"role":"assistant","content":"Hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`)
)

func main() {
	target := flag.String("target", "http://localhost:8080", "Gateway base URL")
	apiKey := flag.String("key", "", "Gateway API key (optional)")
	model := flag.String("model", "bench-model", "Model id to request")
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	stream := flag.Bool("stream", false, "Use streaming requests")
	mockPort := flag.Int("mock-port", 9091, "Port for the local mock upstream")
	flag.Parse()

	go startMockUpstream(*mockPort)
	fmt.Printf("Mock upstream listening on :%d (point the gateway's provider base_url here)\n", *mockPort)

	mode := "Unary"
	if *stream {
		mode = "Streaming"
	}
	fmt.Printf("Running %s benchmark: %s duration, %d req/s against %s\n", mode, *duration, *rate, *target)

	body := fmt.Sprintf(`{"model": %q, "stream": %t, "messages": [{"role": "user", "content": "Hello"}]}`, *model, *stream)

	targeter := func(t *vegeta.Target) error {
		t.Method = http.MethodPost
		t.URL = *target + "/v1/chat/completions"
		t.Body = []byte(body)
		t.Header = http.Header{
			"Content-Type": []string{"application/json"},
		}
		if *apiKey != "" {
			t.Header.Set("Authorization", "Bearer "+*apiKey)
		}
		return nil
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "arclight") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Errors (first 5 unique):")
		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if seen[msg] || len(seen) >= 5 {
				continue
			}
			seen[msg] = true
			fmt.Println(" ", msg)
		}
	}
}

func startMockUpstream(port int) {
	mux := http.NewServeMux()

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if val, ok := req["stream"].(bool); ok && val {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher, _ := w.(http.Flusher)

			for _, chunk := range streamChunks {
				time.Sleep(20 * time.Millisecond)
				_, _ = w.Write(chunk)
				flusher.Flush()
			}
			_, _ = w.Write(streamDone)
			flusher.Flush()
			return
		}

		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(unaryResp)
	})

	_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
