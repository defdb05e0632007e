package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ParseJSON decodes a network exported as {"input_dim": n, "layers": [...]}.
func ParseJSON(data []byte) (*Network, error) {
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

var pmmlActivations = map[string]Activation{
	"identity":  Linear,
	"rectifier": ReLU,
	"logistic":  Sigmoid,
	"tanh":      Tanh,
}

// ParsePMML reads the NeuralNetwork model of a PMML document.
func ParsePMML(data []byte) (*Network, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse PMML: %w", err)
	}
	nn := doc.FindElement("//NeuralNetwork")
	if nn == nil {
		return nil, fmt.Errorf("no NeuralNetwork element found in PMML")
	}
	defaultAct := nn.SelectAttrValue("activationFunction", "logistic")
	defaultNorm := nn.SelectAttrValue("normalizationMethod", "none")

	inputs := nn.FindElements("./NeuralInputs/NeuralInput")
	if len(inputs) == 0 {
		return nil, fmt.Errorf("PMML network has no inputs")
	}
	prev := make(map[string]int, len(inputs))
	for i, in := range inputs {
		prev[in.SelectAttrValue("id", "")] = i
	}

	net := &Network{InputDim: len(inputs)}
	layers := nn.SelectElements("NeuralLayer")
	for li, layerEl := range layers {
		actName := layerEl.SelectAttrValue("activationFunction", defaultAct)
		act, ok := pmmlActivations[actName]
		if !ok {
			return nil, fmt.Errorf("layer %d: unsupported activation function %q", li, actName)
		}
		norm := layerEl.SelectAttrValue("normalizationMethod", "")
		if norm == "" && li == len(layers)-1 {
			norm = defaultNorm
		}
		switch norm {
		case "", "none":
		case "softmax":
			if act != Linear {
				return nil, fmt.Errorf("layer %d: softmax after %q is not supported", li, actName)
			}
			act = Softmax
		default:
			return nil, fmt.Errorf("layer %d: unsupported normalization method %q", li, norm)
		}

		neurons := layerEl.SelectElements("Neuron")
		layer := Layer{
			Weights:    make([][]float64, len(prev)),
			Bias:       make([]float64, len(neurons)),
			Activation: act,
		}
		for i := range layer.Weights {
			layer.Weights[i] = make([]float64, len(neurons))
		}
		next := make(map[string]int, len(neurons))
		for j, neuron := range neurons {
			next[neuron.SelectAttrValue("id", "")] = j
			bias, err := floatAttr(neuron, "bias", "0")
			if err != nil {
				return nil, fmt.Errorf("layer %d neuron %d: %w", li, j, err)
			}
			layer.Bias[j] = bias
			for _, con := range neuron.SelectElements("Con") {
				from := con.SelectAttrValue("from", "")
				i, ok := prev[from]
				if !ok {
					return nil, fmt.Errorf("layer %d neuron %d: connection from unknown neuron %q", li, j, from)
				}
				w, err := floatAttr(con, "weight", "")
				if err != nil {
					return nil, fmt.Errorf("layer %d neuron %d: %w", li, j, err)
				}
				layer.Weights[i][j] = w
			}
		}
		net.Layers = append(net.Layers, layer)
		prev = next
	}

	if err := net.Validate(); err != nil {
		return nil, err
	}
	return net, nil
}

func floatAttr(el *etree.Element, key, def string) (float64, error) {
	raw := el.SelectAttrValue(key, def)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

// LoadFile reads a network artifact, choosing the format from the extension.
func LoadFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".pmml", ".xml":
		return ParsePMML(data)
	default:
		return nil, fmt.Errorf("unsupported model format %q", filepath.Ext(path))
	}
}
