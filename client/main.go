package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/console"
	"github.com/tiggercwh/go-dejavu/gameModel"
	"github.com/tiggercwh/go-dejavu/geometry"
)

const defaultServerURL = "http://localhost:8080/api"

// pendingPoll is how long the client waits for a debounced analysis pass
// before asking for the board again.
const pendingPoll = 200 * time.Millisecond

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) makeRequest(method, url string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, bytes.TrimSpace(respBody))
	}
	return respBody, nil
}

// action sends one game action and decodes the GameResponse.
func (c *apiClient) action(method, path string, body interface{}) (*gameModel.GameResponse, error) {
	respBody, err := c.makeRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	var response gameModel.GameResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, err
	}
	if response.GameState == nil {
		return nil, fmt.Errorf("response without game state: %s", response.Message)
	}
	return &response, nil
}

func (c *apiClient) createNewGame() (*gameModel.GameState, error) {
	response, err := c.action("POST", "/game/new", nil)
	if err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, fmt.Errorf("failed to create game: %s", response.Message)
	}
	return response.GameState, nil
}

func (c *apiClient) getGame(gameID string) (*gameModel.GameState, error) {
	respBody, err := c.makeRequest("GET", fmt.Sprintf("%s/game/%s", c.baseURL, gameID), nil)
	if err != nil {
		return nil, err
	}
	var state gameModel.GameState
	if err := json.Unmarshal(respBody, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// send maps a console command onto its endpoint.
func (c *apiClient) send(gameID string, cmd console.Command) (*gameModel.GameResponse, error) {
	base := "/game/" + gameID
	switch cmd.Kind {
	case console.Add:
		return c.action("POST", base+"/points", gameModel.AddPointRequest{X: cmd.X, Y: cmd.Y})
	case console.Remove:
		return c.action("DELETE", fmt.Sprintf("%s/points/%d", base, cmd.ID), nil)
	case console.Endgame:
		return c.action("POST", base+"/endgame", nil)
	case console.Undo:
		return c.action("POST", base+"/undo", nil)
	case console.Reset:
		return c.action("POST", base+"/reset", nil)
	case console.SetMode:
		return c.action("PUT", base+"/mode", gameModel.ModeRequest{Mode: cmd.Mode.String()})
	}
	return nil, fmt.Errorf("command %d has no endpoint", cmd.Kind)
}

// prepare fills in what a command needs from the last known board. Toggling
// resolves to the other mode, and a placement the board would refuse is
// caught before the round trip.
func prepare(state *gameModel.GameState, cmd console.Command) (console.Command, error) {
	switch cmd.Kind {
	case console.ToggleMode:
		current, err := analysis.ParseMode(state.Mode)
		if err != nil {
			return cmd, err
		}
		return console.Command{Kind: console.SetMode, Mode: current.Toggle()}, nil
	case console.Add:
		if !state.CanAdd {
			return cmd, fmt.Errorf("the board is not taking generators right now")
		}
		if !geometry.DefaultBoard().CanPlace(cmd.X, cmd.Y, gameModel.ToPoints(state.Points)) {
			return cmd, fmt.Errorf("(%g, %g) is off the grid or too close to another generator", cmd.X, cmd.Y)
		}
	}
	return cmd, nil
}

// settle re-reads the board until the server has no analysis pending, so the
// drawn triangle matches the points.
func (c *apiClient) settle(state *gameModel.GameState) *gameModel.GameState {
	for i := 0; i < 10 && state.AnalysisPending; i++ {
		time.Sleep(pendingPoll)
		next, err := c.getGame(state.ID)
		if err != nil {
			break
		}
		state = next
	}
	return state
}

func main() {
	serverURL := os.Getenv("DEJAVU_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	c := &apiClient{baseURL: serverURL, http: &http.Client{Timeout: 10 * time.Second}}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Welcome to the Déjà-Vu trainer client!")

	gameState, err := c.createNewGame()
	if err != nil {
		fmt.Printf("Error creating game: %v\n", err)
		fmt.Printf("Make sure the server is running at %s\n", serverURL)
		return
	}
	fmt.Println(console.Usage)
	console.Render(os.Stdout, *gameState)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		cmd, err := console.Parse(scanner.Text())
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch cmd.Kind {
		case console.Quit:
			return
		case console.Help:
			fmt.Println(console.Usage)
			continue
		case console.Show:
			if next, err := c.getGame(gameState.ID); err != nil {
				fmt.Printf("Error fetching game: %v\n", err)
			} else {
				gameState = c.settle(next)
				console.Render(os.Stdout, *gameState)
			}
			continue
		}

		cmd, err = prepare(gameState, cmd)
		if err != nil {
			fmt.Println(err)
			continue
		}
		response, err := c.send(gameState.ID, cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Println(response.Message)
		if !response.Success {
			continue
		}
		gameState = c.settle(response.GameState)
		console.Render(os.Stdout, *gameState)
	}
}
