package example

import "github.com/teranos/starbind/errors"

//starbind:compile Player, fields, methods,
//starbind:compile PlayerStatus, variants,

// StartingHP is the hit point total of a new player.
const StartingHP = 100

// Player is a participant with hit points and a status.
//
//starbind:structure
//starbind:implementation
type Player struct {
	Name   string
	HP     int `starbind:"hit_points"`
	Status PlayerStatus
	Team   string `starbind:"-"`
}

// NewPlayer returns an active player at full health.
func NewPlayer(name string) *Player {
	return &Player{Name: name, HP: StartingHP, Status: PlayerStatusActive}
}

// Damage removes n hit points and reports whether the player went down.
func (p *Player) Damage(n int) (bool, error) {
	if n < 0 {
		return false, errors.Newf("negative damage %d", n)
	}
	p.HP -= n
	if p.HP <= 0 {
		p.HP = 0
		p.Status = PlayerStatusDown
	}
	return p.Status == PlayerStatusDown, nil
}

// SetStatus overrides the player's status.
func (p *Player) SetStatus(s PlayerStatus) { p.Status = s }

// Alive reports whether the player still has hit points.
func (p Player) Alive() bool { return p.HP > 0 }

// Stats returns the hit points and status together.
func (p Player) Stats() (hp int, status PlayerStatus) { return p.HP, p.Status }

// PlayerStatus is where a player stands in the game.
//
//starbind:enumeration
type PlayerStatus int

const (
	PlayerStatusActive PlayerStatus = iota
	PlayerStatusDown
	PlayerStatusSpectating
)

func (s PlayerStatus) String() string {
	switch s {
	case PlayerStatusActive:
		return "Active"
	case PlayerStatusDown:
		return "Down"
	case PlayerStatusSpectating:
		return "Spectating"
	}
	return "PlayerStatus(?)"
}
