package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// taskFile is the document accepted by the task commands. JSON input is
// read through the same YAML decoder.
type taskFile struct {
	Tasks   []*model.SourceTask `yaml:"tasks"`
	Modules []model.ModuleRef   `yaml:"modules"`
}

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeTaskFile accepts either a {tasks, modules} document or a bare
// list of tasks.
func decodeTaskFile(data []byte) (*taskFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tf := &taskFile{}
	if len(doc.Content) == 0 {
		return tf, nil
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&tf.Tasks); err != nil {
			return nil, fmt.Errorf("decode task list: %w", err)
		}
	case yaml.MappingNode:
		if err := root.Decode(tf); err != nil {
			return nil, fmt.Errorf("decode task document: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode tasks: expected a list or a mapping at line %d", root.Line)
	}
	for i, t := range tf.Tasks {
		if t == nil {
			return nil, fmt.Errorf("decode tasks: task %d is empty", i+1)
		}
	}
	return tf, nil
}

// decodeModules accepts either a {modules} document or a bare list.
func decodeModules(data []byte) ([]model.ModuleRef, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode modules: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	var modules []model.ModuleRef
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&modules); err != nil {
			return nil, fmt.Errorf("decode module list: %w", err)
		}
	case yaml.MappingNode:
		var wrapper struct {
			Modules []model.ModuleRef `yaml:"modules"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("decode module document: %w", err)
		}
		modules = wrapper.Modules
	default:
		return nil, fmt.Errorf("decode modules: expected a list or a mapping at line %d", root.Line)
	}
	return modules, nil
}

// loadTasks reads a task file and, when modulesPath is set, replaces its
// modules with the ones from that file.
func loadTasks(path, modulesPath string, stdin io.Reader) (*taskFile, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	tf, err := decodeTaskFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if modulesPath != "" {
		data, err := readInput(modulesPath, stdin)
		if err != nil {
			return nil, err
		}
		modules, err := decodeModules(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", modulesPath, err)
		}
		tf.Modules = modules
	}
	return tf, nil
}
