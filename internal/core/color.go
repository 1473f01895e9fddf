package core

// Color is the semantic color of a screen cell. The platform maps each
// one to a terminal style.
type Color uint8

const (
	ColorDefault Color = iota
	ColorGround        // obstacles
	ColorObject        // decorative tiles
	ColorWall          // invisible walls, shown in the editor only
	ColorSpawn
	ColorFinish
	ColorBounce
	ColorPlayer
	ColorPlayerAir // jumping or falling
	ColorHUD
	ColorDim
	ColorAlert
)
