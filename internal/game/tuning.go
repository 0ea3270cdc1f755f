package game

import (
	"errors"
	"fmt"
)

// Tuning holds the numeric rules of the game. The zero value is not usable;
// start from DefaultTuning.
type Tuning struct {
	PlayerSize      float64 `yaml:"player_size"`
	CollectibleSize float64 `yaml:"collectible_size"`
	SpawnX          float64 `yaml:"spawn_x"`
	SpawnY          float64 `yaml:"spawn_y"`
	FieldWidth      float64 `yaml:"field_width"`
	FieldHeight     float64 `yaml:"field_height"`
	MinItemValue    int     `yaml:"min_item_value"`
	MaxItemValue    int     `yaml:"max_item_value"`
	ItemBatchSize   int     `yaml:"item_batch_size"`
	// MaxSpeed caps the speed of a single move. Zero means unlimited.
	MaxSpeed float64 `yaml:"max_speed"`
}

// DefaultTuning returns the standard rule set
func DefaultTuning() Tuning {
	return Tuning{
		PlayerSize:      PlayerSize,
		CollectibleSize: CollectibleSize,
		SpawnX:          SpawnX,
		SpawnY:          SpawnY,
		FieldWidth:      FieldWidth,
		FieldHeight:     FieldHeight,
		MinItemValue:    MinItemValue,
		MaxItemValue:    MaxItemValue,
		ItemBatchSize:   ItemBatchSize,
	}
}

// Validate reports the first rule that makes the tuning unplayable
func (t Tuning) Validate() error {
	switch {
	case t.PlayerSize <= 0:
		return fmt.Errorf("player_size must be positive, got %v", t.PlayerSize)
	case t.CollectibleSize <= 0:
		return fmt.Errorf("collectible_size must be positive, got %v", t.CollectibleSize)
	case t.FieldWidth <= 0 || t.FieldHeight <= 0:
		return fmt.Errorf("field must be positive, got %vx%v", t.FieldWidth, t.FieldHeight)
	case t.MinItemValue < 1:
		return fmt.Errorf("min_item_value must be at least 1, got %d", t.MinItemValue)
	case t.MaxItemValue < t.MinItemValue:
		return fmt.Errorf("max_item_value %d below min_item_value %d", t.MaxItemValue, t.MinItemValue)
	case t.ItemBatchSize < 1:
		return errors.New("item_batch_size must be at least 1")
	case t.MaxSpeed < 0:
		return fmt.Errorf("max_speed must not be negative, got %v", t.MaxSpeed)
	}
	return nil
}
