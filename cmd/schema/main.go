// Command schema writes the JSON Schema of the game server's wire types so
// front ends can validate what they send and receive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/tiggercwh/go-dejavu/gameModel"
)

const defaultOut = "schema/gamestate.json"

func main() {
	log.SetFlags(0)
	log.SetPrefix("schema: ")

	out := flag.String("out", defaultOut, `file to write, or "-" for stdout`)
	flag.Parse()

	schema := buildSchema()
	if *out == "-" {
		if err := encode(os.Stdout, schema); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := save(*out, schema); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d definitions)", *out, len(schema.Definitions))
}

// buildSchema describes the server's response shape at the root and folds the
// request and push payloads into the shared definitions.
func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{}
	schema := reflector.Reflect(new(gameModel.GameResponse))
	schema.Title = "Déjà-Vu Trainer API"
	schema.Description = "Game state and action payloads exchanged over HTTP and the websocket"

	if schema.Definitions == nil {
		schema.Definitions = jsonschema.Definitions{}
	}
	for _, v := range []any{
		new(gameModel.AddPointRequest),
		new(gameModel.RemovePointRequest),
		new(gameModel.ModeRequest),
		new(gameModel.ErrorPayload),
	} {
		for name, def := range reflector.Reflect(v).Definitions {
			if _, ok := schema.Definitions[name]; !ok {
				schema.Definitions[name] = def
			}
		}
	}
	return schema
}

func encode(w io.Writer, schema *jsonschema.Schema) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schema); err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	return nil
}

// save replaces path atomically: the schema is encoded into a sibling temp
// file that is renamed over path only once it is complete.
func save(path string, schema *jsonschema.Schema) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = encode(f, schema); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
