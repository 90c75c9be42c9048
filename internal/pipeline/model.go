package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	scalerFile = "scaler.json"
	kmeansFile = "kmeans.json"
)

// loadModel reads a persisted scaler and clustering from dir. ok is false
// when either file is absent.
func loadModel(dir string) (*StandardScaler, *KMeans, bool, error) {
	var scaler StandardScaler
	var km KMeans
	for name, dst := range map[string]interface{}{scalerFile: &scaler, kmeansFile: &km} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return nil, nil, false, nil
		}
		if err != nil {
			return nil, nil, false, errors.Wrapf(err, "read %s", name)
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return nil, nil, false, errors.Wrapf(err, "decode %s", name)
		}
	}
	return &scaler, &km, true, nil
}

func saveModel(dir string, scaler *StandardScaler, km *KMeans) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create model dir %s", dir)
	}
	for name, src := range map[string]interface{}{scalerFile: scaler, kmeansFile: km} {
		data, err := json.MarshalIndent(src, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "encode %s", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	return nil
}
