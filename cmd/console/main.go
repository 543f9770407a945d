package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/outerrim/holonet/pkg/chat"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	stdin := bufio.NewReader(os.Stdin)

	fmt.Print("Display name: ")
	name, err := stdin.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read name: %v\n", err)
		os.Exit(1)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Fprintf(os.Stderr, "Display name cannot be empty\n")
		os.Exit(1)
	}

	identity := Identity{
		AuthorID:   "user-" + uuid.New().String(),
		AuthorName: name,
	}

	rooms, err := listRooms(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list rooms: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nAvailable Rooms:")
	for i := range rooms {
		fmt.Printf("  %d - %s\n", i+1, rooms[i].Name)
	}
	fmt.Printf("  %d - Create a new room\n", len(rooms)+1)
	fmt.Print("\nSelect a room by number: ")

	var choice int
	if _, err := fmt.Fscanf(stdin, "%d\n", &choice); err != nil || choice < 1 || choice > len(rooms)+1 {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	var room *chat.Room
	if choice == len(rooms)+1 {
		fmt.Print("Room name: ")
		roomName, err := stdin.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read room name: %v\n", err)
			os.Exit(1)
		}
		roomName = strings.TrimSpace(roomName)
		room, err = createRoom(client, cfg.APIBaseURL, roomName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create room: %v\n", err)
			os.Exit(1)
		}
	} else {
		room = &rooms[choice-1]
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, room, identity),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
