package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/videostore/vector"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterVectorFunctions registers vec_cosine and vec_l2 with the driver so
// they are available on new connections opened after this call. Existing open
// connections will not see them. Calling it more than once is harmless.
func RegisterVectorFunctions() error {
	var err error
	registerOnce.Do(func() {
		if err = sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl); err != nil {
			return
		}
		err = sqlite.RegisterDeterministicScalarFunction("vec_l2", 2, vecL2Impl)
	})
	return err
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func embeddingArgs(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("vec_cosine", args)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	sim, err := vector.CosineSimilarity(a, b)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := embeddingArgs("vec_l2", args)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	d, err := vector.L2Distance(a, b)
	if err != nil {
		return nil, err
	}
	return d, nil
}
