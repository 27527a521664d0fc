package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "room":
		handleRoom(args)
	case "booking":
		handleBooking(args)
	case "maintenance":
		handleMaintenance(args)
	case "announcement":
		handleAnnouncement(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleRoom(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal room <list|get>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listRooms(args[1:])
	case "get":
		getRoom(args[1:])
	default:
		fmt.Printf("unknown room command: %s\n", subCmd)
	}
}

func handleBooking(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal booking <list|create|cancel>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listBookings(args[1:])
	case "create":
		createBooking(args[1:])
	case "cancel":
		cancelBooking(args[1:])
	default:
		fmt.Printf("unknown booking command: %s\n", subCmd)
	}
}

func handleMaintenance(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal maintenance <list|create>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listMaintenance(args[1:])
	case "create":
		createMaintenance(args[1:])
	default:
		fmt.Printf("unknown maintenance command: %s\n", subCmd)
	}
}

func handleAnnouncement(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal announcement <list>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listAnnouncements(args[1:])
	default:
		fmt.Printf("unknown announcement command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"name":     *name,
		"email":    *email,
		"password": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result["message"])
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result["message"])
	}
}

func logoutUser() {
	req, _ := http.NewRequest("POST", getAPIURL()+"/auth/logout", nil)
	addAuthHeader(req)
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
	}
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/profile", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in")
		return
	}

	var profile map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&profile)
	fmt.Printf("✓ Logged in as %v <%v> (%v)\n", profile["name"], profile["email"], profile["role"])
}

// Room commands
func listRooms(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/rooms", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var rooms []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&rooms)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCAPACITY\tSTATUS")
	for _, r := range rooms {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", r["id"], r["name"], r["capacity"], r["status"])
	}
	w.Flush()
}

func getRoom(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal room get <room-id>")
		return
	}
	req, _ := http.NewRequest("GET", getAPIURL()+"/rooms/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var room map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&room)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %v\n", room["message"])
		return
	}
	out, _ := json.MarshalIndent(room, "", "  ")
	fmt.Println(string(out))
}

// Booking commands
func listBookings(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	all := fs.Bool("all", false, "list every booking (admin only)")
	fs.Parse(args)

	path := "/bookings/my-bookings"
	if *all {
		path = "/bookings"
	}

	req, _ := http.NewRequest("GET", getAPIURL()+path, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var bookings []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&bookings)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tROOM\tSTART\tEND\tSTATUS")
	for _, b := range bookings {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", b["id"], b["room_id"], b["start_time"], b["end_time"], b["status"])
	}
	w.Flush()
}

func createBooking(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	roomID := fs.String("room", "", "room ID")
	start := fs.String("start", "", "start time (RFC 3339)")
	end := fs.String("end", "", "end time (RFC 3339)")
	purpose := fs.String("purpose", "", "booking purpose")
	attendees := fs.Int("attendees", 0, "attendee count")

	fs.Parse(args)

	if *roomID == "" || *start == "" || *end == "" {
		fmt.Println("Error: room, start, and end are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"room_id":    *roomID,
		"start_time": *start,
		"end_time":   *end,
		"purpose":    *purpose,
		"attendees":  *attendees,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/bookings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Booking created: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Booking failed: %v\n", result["message"])
	}
}

func cancelBooking(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: campusportal booking cancel <booking-id>")
		return
	}
	req, _ := http.NewRequest("DELETE", getAPIURL()+"/bookings/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Println("✓ Booking cancelled")
	} else {
		fmt.Printf("✗ Cancel failed: %v\n", result["message"])
	}
}

// Maintenance commands
func listMaintenance(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	all := fs.Bool("all", false, "list every request (admin only)")
	fs.Parse(args)

	path := "/maintenance/my-requests"
	if *all {
		path = "/maintenance"
	}

	req, _ := http.NewRequest("GET", getAPIURL()+path, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var requests []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&requests)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS")
	for _, m := range requests {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", m["id"], m["title"], m["priority"], m["status"])
	}
	w.Flush()
}

func createMaintenance(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "short summary")
	description := fs.String("description", "", "detailed description")
	location := fs.String("location", "", "where the problem is")
	priority := fs.String("priority", "medium", "low, medium, high, or urgent")

	fs.Parse(args)

	if *title == "" || *description == "" {
		fmt.Println("Error: title and description are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"title":       *title,
		"description": *description,
		"location":    *location,
		"priority":    *priority,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/maintenance", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Request filed: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Request failed: %v\n", result["message"])
	}
}

// Announcement commands
func listAnnouncements(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/announcements", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var announcements []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&announcements)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRIORITY\tPOSTED")
	for _, a := range announcements {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", a["id"], a["title"], a["category"], a["priority"], a["created_at"])
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("CAMPUSPORTAL_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.campusportal/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.campusportal", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`Campus Portal CLI

Usage:
  campusportal <command> [options]

Commands:
  auth          User authentication (register, login, logout, who)
  room          Room operations (list, get)
  booking       Booking operations (list, create, cancel)
  maintenance   Maintenance requests (list, create)
  announcement  Announcements (list)
  help          Show this help message

Environment Variables:
  CAMPUSPORTAL_API    API endpoint (default: http://localhost:8080/api)

Examples:
  campusportal auth register -name "Ada Lovelace" -email ada@example.edu -password secret123
  campusportal auth login -email ada@example.edu -password secret123
  campusportal room list
  campusportal booking create -room <id> -start 2026-09-01T10:00:00Z -end 2026-09-01T11:00:00Z
`)
}
