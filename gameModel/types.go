package gameModel

type Point struct {
	ID int     `json:"id" jsonschema:"minimum=1"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	// Removable is set when a standard removal of this point would be
	// accepted right now.
	Removable bool `json:"removable,omitempty"`
}

type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box, Min top-left and Max bottom-right in board
// coordinates.
type Rect struct {
	Min Coord `json:"min"`
	Max Coord `json:"max"`
}

type Triangle struct {
	PointIDs  [3]int  `json:"pointIds"`
	Points    []Point `json:"points"`
	Perimeter float64 `json:"perimeter"`
	Area      float64 `json:"area"`
	Centroid  Coord   `json:"centroid"`
	Bounds    Rect    `json:"bounds"`
}

type SequenceState struct {
	Active                 bool     `json:"active"`
	IdealLoosestPerimeter  *float64 `json:"idealLoosestPerimeter"`
	IdealTightestPerimeter *float64 `json:"idealTightestPerimeter"`
	InitialSnapshot        []Point  `json:"initialSnapshot,omitempty"`
	ModeLocked             bool     `json:"modeLocked"`
}

// Cues are one-shot animation triggers, only set on the update that raised
// them.
type Cues struct {
	SequenceStarted bool `json:"sequenceStarted,omitempty"`
	IdealEndgame    bool `json:"idealEndgame,omitempty"`
	ModeChanged     bool `json:"modeChanged,omitempty"`
}

type GameState struct {
	ID                   string        `json:"id"`
	Version              uint64        `json:"version"`
	Mode                 string        `json:"mode" jsonschema:"enum=survivor,enum=killer"`
	Points               []Point       `json:"points"`
	NextPointID          int           `json:"nextPointId"`
	Sequence             SequenceState `json:"sequence"`
	DisplayTriangle      *Triangle     `json:"displayTriangle,omitempty"`
	RecommendedPointID   *int          `json:"recommendedPointId,omitempty"`
	ShowAreaAndPerimeter bool          `json:"showAreaAndPerimeter"`
	IdealEndgame         bool          `json:"idealEndgame"`
	AnalysisPending      bool          `json:"analysisPending"`
	ExitingPointIDs      []int         `json:"exitingPointIds,omitempty"`
	Cues                 Cues          `json:"cues"`
	Generators           int           `json:"generators"`
	CanAdd               bool          `json:"canAdd"`
	CanUndo              bool          `json:"canUndo"`
	Status               string        `json:"status"`
	CreatedAt            string        `json:"createdAt"`
	LastActivity         string        `json:"lastActivity"`
}

type AddPointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RemovePointRequest struct {
	ID int `json:"id"`
}

type ModeRequest struct {
	Mode string `json:"mode" jsonschema:"enum=survivor,enum=killer"`
}

type GameResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	GameState *GameState `json:"gameState,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
