package transport

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type stubDB struct {
	noopDB
	queried bool
}

func (s *stubDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	s.queried = true
	return &dynamodb.QueryOutput{}, nil
}

func TestGetDBReturnsTestDBInTestEnv(t *testing.T) {
	os.Setenv("GO_ENV", "test")
	defer os.Unsetenv("GO_ENV")

	stub := &stubDB{}
	SetTestDB(stub)
	defer SetTestDB(nil)

	var got internal_types.DynamoDBAPI = GetDB()
	if got != stub {
		t.Fatal("expected GetDB to return the injected test client")
	}

	_, _ = got.Query(context.TODO(), &dynamodb.QueryInput{})
	if !stub.queried {
		t.Error("expected query to hit the stub")
	}
}

func TestGetDBCreatesNoopWhenUnset(t *testing.T) {
	os.Setenv("GO_ENV", "test")
	defer os.Unsetenv("GO_ENV")

	SetTestDB(nil)
	defer SetTestDB(nil)

	client := GetDB()
	if client == nil {
		t.Fatal("expected a fallback client, got nil")
	}
	if _, err := client.Scan(context.TODO(), &dynamodb.ScanInput{}); err != nil {
		t.Errorf("expected no error from noop client, got %v", err)
	}
}
