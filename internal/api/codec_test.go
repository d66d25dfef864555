package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestCodec_PlainStruct(t *testing.T) {
	email := "a@x"
	in := &CreateUserRequest{Username: "alice", Password: "pw", Email: &email}

	b, err := Codec{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","password":"pw","email":"a@x"}`, string(b))

	var out CreateUserRequest
	require.NoError(t, Codec{}.Unmarshal(b, &out))
	assert.Equal(t, *in, out)
}

func TestCodec_EmptyPayload(t *testing.T) {
	var out Empty
	assert.NoError(t, Codec{}.Unmarshal(nil, &out))
}

func TestCodec_ProtoMessage(t *testing.T) {
	in := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}

	b, err := Codec{}.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), "SERVING")

	out := &healthpb.HealthCheckResponse{}
	require.NoError(t, Codec{}.Unmarshal(b, out))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, out.GetStatus())
}

func TestIsAdminMethod(t *testing.T) {
	assert.False(t, IsAdminMethod(FullMethod(MethodCreateSession)))
	assert.False(t, IsAdminMethod(FullMethod(MethodVerifySession)))
	assert.False(t, IsAdminMethod(FullMethod(MethodDeleteSession)))
	assert.True(t, IsAdminMethod(FullMethod(MethodCreateUser)))
	assert.True(t, IsAdminMethod(FullMethod(MethodExportDirectory)))
	assert.Equal(t, "/enigma.v1.Enigma/GetUser", FullMethod(MethodGetUser))
	assert.Len(t, ServiceDesc.Methods, 13)
}
