package models

// Playlist represents a playlist's metadata without its tracks
type Playlist struct {
	ID          string
	Name        string
	Description string
	Owner       string
	TrackCount  int
	Public      bool
	ImageURL    string
}

// PlaylistExport represents a playlist with its complete track listing
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Track represents a single track from the streaming service
type Track struct {
	ID       string
	URI      string
	Title    string
	Artist   string
	Album    string
	Duration int    // Duration in seconds
	ISRC     string // International Standard Recording Code for cross-service matching
	Explicit bool
}

// TrackPage is one window of a paginated track listing
type TrackPage struct {
	Tracks []Track
	Total  int
	Limit  int
	Offset int
	More   bool // More reports whether another page follows this one
}

// Album represents an album from the streaming service
type Album struct {
	ID          string
	URI         string
	Name        string
	Artist      string
	ReleaseDate string
	TrackCount  int
}

// Artist represents an artist from the streaming service
type Artist struct {
	ID        string
	URI       string
	Name      string
	Genres    []string
	Followers int
}

// Profile represents the authenticated user's account information
type Profile struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string
	Followers   int
}

// Device represents a playback device registered with the user's account
type Device struct {
	ID       string
	Name     string
	Type     string
	Active   bool
	Volume   int
	Restrict bool
}

// PlaybackState represents the user's current playback session
type PlaybackState struct {
	Device     Device
	Track      *Track
	Progress   int // Progress into the current track in seconds
	Playing    bool
	Shuffle    bool
	Repeat     string // "off", "track", or "context"
	ContextURI string
}

// PlayHistory represents a single entry in the user's listening history
type PlayHistory struct {
	Track    Track
	PlayedAt string
	Context  string
}

// Queue represents the active device's playback queue
type Queue struct {
	NowPlaying *Track
	Next       []Track
}

// SearchResults aggregates matches across entity types for a single query
type SearchResults struct {
	Tracks    []Track
	Albums    []Album
	Artists   []Artist
	Playlists []Playlist
}
