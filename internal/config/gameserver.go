package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/rs2go/internal/constants"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "RS2GO_CONFIG"

// DefaultConfigPath is used when EnvConfigPath is unset.
const DefaultConfigPath = "config/gameserver.yaml"

// Tile is a position in YAML form.
type Tile struct {
	X     int `yaml:"x"`
	Y     int `yaml:"y"`
	Plane int `yaml:"plane"`
}

// NpcSpawn describes one static NPC.
type NpcSpawn struct {
	TypeID    int  `yaml:"type_id"`
	Position  Tile `yaml:"position"`
	Hitpoints int  `yaml:"hitpoints"`
	// WalkRadius lets the NPC wander around its spawn; 0 keeps it still.
	WalkRadius int `yaml:"walk_radius"`
}

// World holds registry and spawn parameters.
type World struct {
	PlayerSlots int        `yaml:"player_slots"` // slots 1..PlayerSlots-1
	NpcSlots    int        `yaml:"npc_slots"`    // slots 1..NpcSlots-1
	Spawn       Tile       `yaml:"spawn"`
	Npcs        []NpcSpawn `yaml:"npcs"`

	NpcRespawnTicks int `yaml:"npc_respawn_ticks"`
}

// Sync holds view synchronization parameters.
type Sync struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	ViewDistance int           `yaml:"view_distance"`

	// PlayerAdmitPerTick caps newly admitted players per viewer per tick.
	PlayerAdmitPerTick int `yaml:"player_admit_per_tick"`
	// PlayerVisibleCap caps players tracked by one viewer.
	PlayerVisibleCap int `yaml:"player_visible_cap"`
	// NpcAdmitPerTick caps newly admitted NPCs per viewer per tick; 0 = unlimited.
	NpcAdmitPerTick int `yaml:"npc_admit_per_tick"`
	// NpcVisibleCap caps NPCs tracked by one viewer.
	NpcVisibleCap int `yaml:"npc_visible_cap"`

	PlayerBufferSize  int `yaml:"player_buffer_size"`
	PlayerScratchSize int `yaml:"player_scratch_size"`
	NpcBufferSize     int `yaml:"npc_buffer_size"`
	NpcScratchSize    int `yaml:"npc_scratch_size"`
}

// FloodProtection limits inbound packets per client.
type FloodProtection struct {
	Enabled          bool    `yaml:"enabled"`
	PacketsPerSecond float64 `yaml:"packets_per_second"`
	Burst            int     `yaml:"burst"`
}

// GameServer holds all configuration for the game server.
type GameServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Write queue / timeouts
	WriteTimeout  time.Duration `yaml:"write_timeout"`   // per-write deadline (default: 5s)
	ReadTimeout   time.Duration `yaml:"read_timeout"`    // idle client disconnect (default: 60s)
	LoginTimeout  time.Duration `yaml:"login_timeout"`   // handshake deadline (default: 10s)
	SendQueueSize int           `yaml:"send_queue_size"` // per-client outbox capacity (default: 256)

	World           World           `yaml:"world"`
	Sync            Sync            `yaml:"sync"`
	FloodProtection FloodProtection `yaml:"flood_protection"`
	Log             LogConfig       `yaml:"log"`
	Metrics         MetricsConfig   `yaml:"metrics"`
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		BindAddress:   "0.0.0.0",
		Port:          43594,
		WriteTimeout:  5 * time.Second,
		ReadTimeout:   60 * time.Second,
		LoginTimeout:  10 * time.Second,
		SendQueueSize: 256,
		World: World{
			PlayerSlots:     2000,
			NpcSlots:        8192,
			Spawn:           Tile{X: 3222, Y: 3218},
			NpcRespawnTicks: 25,
		},
		Sync: Sync{
			TickInterval:       600 * time.Millisecond,
			ViewDistance:       constants.MaxViewDistance,
			PlayerAdmitPerTick: 15,
			PlayerVisibleCap:   220,
			NpcAdmitPerTick:    0,
			NpcVisibleCap:      constants.MaxTracked,
			PlayerBufferSize:   16 << 10,
			PlayerScratchSize:  8 << 10,
			NpcBufferSize:      2 << 10,
			NpcScratchSize:     1 << 10,
		},
		FloodProtection: FloodProtection{
			Enabled:          true,
			PacketsPerSecond: 25,
			Burst:            50,
		},
		Log:     DefaultLog(),
		Metrics: DefaultMetrics(),
	}
}

// ConfigPath returns the config location from the environment or the default.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the wire format cannot carry.
func (c GameServer) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.SendQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("send_queue_size must be positive, got %d", c.SendQueueSize))
	}

	// слот 2047 (16383) занят терминатором списка
	if c.World.PlayerSlots < 2 || c.World.PlayerSlots > constants.PlayerListTerminator {
		errs = append(errs, fmt.Errorf("world.player_slots must be in [2, %d], got %d",
			constants.PlayerListTerminator, c.World.PlayerSlots))
	}
	if c.World.NpcSlots < 2 || c.World.NpcSlots > constants.NpcListTerminator {
		errs = append(errs, fmt.Errorf("world.npc_slots must be in [2, %d], got %d",
			constants.NpcListTerminator, c.World.NpcSlots))
	}
	for i, n := range c.World.Npcs {
		if n.TypeID < 0 || n.TypeID >= 1<<constants.NpcTypeBits {
			errs = append(errs, fmt.Errorf("world.npcs[%d].type_id %d does not fit %d bits", i, n.TypeID, constants.NpcTypeBits))
		}
		if n.Hitpoints <= 0 {
			errs = append(errs, fmt.Errorf("world.npcs[%d].hitpoints must be positive", i))
		}
	}

	s := c.Sync
	if s.TickInterval <= 0 {
		errs = append(errs, errors.New("sync.tick_interval must be positive"))
	}
	if s.ViewDistance < 1 || s.ViewDistance > constants.MaxViewDistance {
		errs = append(errs, fmt.Errorf("sync.view_distance must be in [1, %d], got %d", constants.MaxViewDistance, s.ViewDistance))
	}
	if s.PlayerAdmitPerTick < 1 {
		errs = append(errs, fmt.Errorf("sync.player_admit_per_tick must be positive, got %d", s.PlayerAdmitPerTick))
	}
	if s.PlayerVisibleCap < 1 || s.PlayerVisibleCap > constants.MaxTracked {
		errs = append(errs, fmt.Errorf("sync.player_visible_cap must be in [1, %d], got %d", constants.MaxTracked, s.PlayerVisibleCap))
	}
	if s.NpcAdmitPerTick < 0 {
		errs = append(errs, fmt.Errorf("sync.npc_admit_per_tick must not be negative, got %d", s.NpcAdmitPerTick))
	}
	if s.NpcVisibleCap < 1 || s.NpcVisibleCap > constants.MaxTracked {
		errs = append(errs, fmt.Errorf("sync.npc_visible_cap must be in [1, %d], got %d", constants.MaxTracked, s.NpcVisibleCap))
	}
	if s.PlayerScratchSize <= 0 || s.PlayerBufferSize <= s.PlayerScratchSize {
		errs = append(errs, errors.New("sync.player_buffer_size must exceed a positive player_scratch_size"))
	}
	if s.NpcScratchSize <= 0 || s.NpcBufferSize <= s.NpcScratchSize {
		errs = append(errs, errors.New("sync.npc_buffer_size must exceed a positive npc_scratch_size"))
	}

	if c.FloodProtection.Enabled && (c.FloodProtection.PacketsPerSecond <= 0 || c.FloodProtection.Burst <= 0) {
		errs = append(errs, errors.New("flood_protection needs positive packets_per_second and burst"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		errs = append(errs, errors.New("metrics.listen_addr is required when metrics are enabled"))
	}

	return errors.Join(errs...)
}
