package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Tuning holds every gameplay constant. Lengths are logical playfield units,
// speeds are units per second.
type Tuning struct {
	// Playfield
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// Ship
	ShipWidth        float64 `yaml:"ship_width"`
	ShipHeight       float64 `yaml:"ship_height"`
	ShipBottomMargin float64 `yaml:"ship_bottom_margin"` // Distance from ship top to playfield bottom
	ShipStartX       float64 `yaml:"ship_start_x"`
	ShipStep         float64 `yaml:"ship_step"` // Movement per left/right command

	// Bullets
	BulletWidth  float64       `yaml:"bullet_width"`
	BulletHeight float64       `yaml:"bullet_height"`
	BulletSpeed  float64       `yaml:"bullet_speed"`
	FireCooldown time.Duration `yaml:"fire_cooldown"`

	// Enemies
	EnemyWidth       float64 `yaml:"enemy_width"`
	EnemyHeight      float64 `yaml:"enemy_height"`
	EnemySpawnJitter float64 `yaml:"enemy_spawn_jitter"` // Extra random height above the playfield at spawn
	FloorMargin      float64 `yaml:"floor_margin"`       // Gap between floor line and ship top edge

	// Difficulty
	SaturationScore    int           `yaml:"saturation_score"`
	EnemyMinSpeed      float64       `yaml:"enemy_min_speed"`
	EnemyMaxSpeed      float64       `yaml:"enemy_max_speed"`
	SpawnIntervalMax   time.Duration `yaml:"spawn_interval_max"`
	SpawnIntervalMin   time.Duration `yaml:"spawn_interval_min"`
	SpawnIntervalFloor time.Duration `yaml:"spawn_interval_floor"`

	// Scoring
	InitialLives int `yaml:"initial_lives"`
	KillReward   int `yaml:"kill_reward"`

	// Particles
	ParticleCount    int     `yaml:"particle_count"`
	ParticleMinSpeed float64 `yaml:"particle_min_speed"`
	ParticleMaxSpeed float64 `yaml:"particle_max_speed"`
	ParticleMinLife  float64 `yaml:"particle_min_life"` // Seconds
	ParticleMaxLife  float64 `yaml:"particle_max_life"` // Seconds

	// Timing
	MaxStep time.Duration `yaml:"max_step"` // Upper bound on a single tick's elapsed time
}

// DefaultTuning returns the reference tuning for a 500x400 playfield.
func DefaultTuning() Tuning {
	return Tuning{
		Width:  500,
		Height: 400,

		ShipWidth:        40,
		ShipHeight:       20,
		ShipBottomMargin: 40,
		ShipStartX:       230,
		ShipStep:         24,

		BulletWidth:  4,
		BulletHeight: 10,
		BulletSpeed:  360,
		FireCooldown: 180 * time.Millisecond,

		EnemyWidth:       30,
		EnemyHeight:      20,
		EnemySpawnJitter: 50,
		FloorMargin:      4,

		SaturationScore:    300,
		EnemyMinSpeed:      60,
		EnemyMaxSpeed:      200,
		SpawnIntervalMax:   time.Second,
		SpawnIntervalMin:   300 * time.Millisecond,
		SpawnIntervalFloor: 250 * time.Millisecond,

		InitialLives: 3,
		KillReward:   10,

		ParticleCount:    8,
		ParticleMinSpeed: 50,
		ParticleMaxSpeed: 170,
		ParticleMinLife:  0.4,
		ParticleMaxLife:  0.8,

		MaxStep: 33 * time.Millisecond,
	}
}

// ShipY returns the fixed top edge of the ship.
func (t Tuning) ShipY() float64 {
	return t.Height - t.ShipBottomMargin
}

// FloorY returns the line enemies must not reach.
func (t Tuning) FloorY() float64 {
	return t.Height - t.ShipHeight - t.FloorMargin
}

// Validate reports the first inconsistent value.
func (t Tuning) Validate() error {
	switch {
	case t.Width <= 0 || t.Height <= 0:
		return errors.Errorf("playfield must be positive, got %vx%v", t.Width, t.Height)
	case t.ShipWidth <= 0 || t.ShipWidth > t.Width:
		return errors.Errorf("ship width %v does not fit playfield width %v", t.ShipWidth, t.Width)
	case t.ShipHeight <= 0 || t.ShipBottomMargin < t.ShipHeight || t.ShipBottomMargin > t.Height:
		return errors.Errorf("ship height %v and bottom margin %v do not fit", t.ShipHeight, t.ShipBottomMargin)
	case t.ShipStep <= 0:
		return errors.Errorf("ship step must be positive, got %v", t.ShipStep)
	case t.BulletWidth <= 0 || t.BulletHeight <= 0 || t.BulletSpeed <= 0:
		return errors.New("bullet size and speed must be positive")
	case t.FireCooldown < 0:
		return errors.Errorf("fire cooldown must not be negative, got %v", t.FireCooldown)
	case t.EnemyWidth <= 0 || t.EnemyWidth > t.Width || t.EnemyHeight <= 0:
		return errors.Errorf("enemy size %vx%v does not fit", t.EnemyWidth, t.EnemyHeight)
	case t.EnemySpawnJitter < 0 || t.FloorMargin < 0:
		return errors.New("spawn jitter and floor margin must not be negative")
	case t.SaturationScore <= 0:
		return errors.Errorf("saturation score must be positive, got %d", t.SaturationScore)
	case t.EnemyMinSpeed <= 0 || t.EnemyMaxSpeed < t.EnemyMinSpeed:
		return errors.Errorf("enemy speed range [%v, %v] is invalid", t.EnemyMinSpeed, t.EnemyMaxSpeed)
	case t.SpawnIntervalFloor <= 0 || t.SpawnIntervalMin < t.SpawnIntervalFloor || t.SpawnIntervalMax < t.SpawnIntervalMin:
		return errors.Errorf("spawn intervals floor=%v min=%v max=%v are invalid",
			t.SpawnIntervalFloor, t.SpawnIntervalMin, t.SpawnIntervalMax)
	case t.InitialLives <= 0 || t.KillReward <= 0:
		return errors.New("initial lives and kill reward must be positive")
	case t.ParticleCount < 0:
		return errors.Errorf("particle count must not be negative, got %d", t.ParticleCount)
	case t.ParticleMinSpeed < 0 || t.ParticleMaxSpeed < t.ParticleMinSpeed:
		return errors.New("particle speed range is invalid")
	case t.ParticleMinLife <= 0 || t.ParticleMaxLife < t.ParticleMinLife:
		return errors.New("particle life range is invalid")
	case t.MaxStep <= 0:
		return errors.Errorf("max step must be positive, got %v", t.MaxStep)
	}
	return nil
}

// LoadTuning reads a YAML file and overlays it on DefaultTuning.
// Keys missing from the file keep their default. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, errors.Wrap(err, "read tuning file")
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, errors.Wrapf(err, "parse tuning file %s", path)
	}
	if err := t.Validate(); err != nil {
		return t, errors.Wrapf(err, "tuning file %s", path)
	}
	return t, nil
}
