package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vincentbai/browsetrace-recorder/internal/models"
)

//go:embed batch.schema.json
var batchSchemaSource string

const batchSchemaURL = "https://browsetrace.local/schemas/batch.schema.json"

var errInvalidJSON = errors.New("Invalid JSON format")

type batchValidator struct {
	schema *jsonschema.Schema
}

func newBatchValidator() *batchValidator {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(batchSchemaURL, strings.NewReader(batchSchemaSource)); err != nil {
		panic(fmt.Sprintf("batch schema load failed: %v", err))
	}
	return &batchValidator{schema: c.MustCompile(batchSchemaURL)}
}

// decode checks payload against the batch schema before decoding it.
func (v *batchValidator) decode(payload []byte) (models.Batch, error) {
	var document any
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return models.Batch{}, errInvalidJSON
	}
	if err := v.schema.Validate(document); err != nil {
		return models.Batch{}, fmt.Errorf("batch schema validation failed: %w", err)
	}
	var batch models.Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return models.Batch{}, errInvalidJSON
	}
	return batch, nil
}
