// Package calibration persists the artifacts produced by IMU and
// kinematics calibration (§4.2/§4.1) to YAML files, grounded on the
// teacher's config Loader (format-detecting load, trimmed to the single
// format this module needs), plus a base58 content fingerprint grounded on
// the teacher's crypto package's key-encoding precedent.
package calibration

import (
	"crypto/sha256"
	"fmt"
	"os"

	b58 "github.com/mr-tron/base58/base58"
	"gopkg.in/yaml.v3"

	"github.com/stpmotion/motioncore/imu"
)

// Geometry holds the calibrated kinematic constants shared by both
// drivetrain models (§4.2's calibration procedures).
type Geometry struct {
	WheelRadiusM   float32 `yaml:"wheel_radius_m"`
	TicksPerRev    float32 `yaml:"ticks_per_rev"`
	WheelbaseM     float32 `yaml:"wheelbase_m,omitempty"`
	ChassisFactorM float32 `yaml:"chassis_factor_m,omitempty"`
}

// Artifact is the full set of calibration data for one device, persisted
// as a single YAML document.
type Artifact struct {
	Geometry Geometry        `yaml:"geometry"`
	IMU      imu.Calibration `yaml:"imu"`
}

// Load reads and parses a calibration artifact from path.
func Load(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("calibration: read %s: %w", path, err)
	}
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("calibration: parse %s: %w", path, err)
	}
	return a, nil
}

// Save serializes a calibration artifact as YAML and writes it to path.
func Save(path string, a Artifact) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("calibration: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("calibration: write %s: %w", path, err)
	}
	return nil
}

// Fingerprint returns a short, base58-encoded hash of the artifact's
// serialized form, suitable for log lines and filenames that need to
// distinguish one calibration run from another without printing the full
// document.
func Fingerprint(a Artifact) (string, error) {
	data, err := yaml.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("calibration: marshal: %w", err)
	}
	sum := sha256.Sum256(data)
	return b58.Encode(sum[:8]), nil
}
