package models

import (
	"encoding/json"
	"os"
)

// SaveModel writes a fitted model as indented JSON
func SaveModel(path string, model *FittedModel) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadModel reads a fitted model previously written by SaveModel
func LoadModel(path string) (*FittedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model FittedModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	return &model, nil
}
