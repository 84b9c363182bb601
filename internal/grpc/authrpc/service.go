// Package authrpc описывает gRPC-сервис авторизации library.auth.AuthService.
//
// Сообщения передаются встроенными типами protobuf (structpb.Struct и
// wrapperspb.StringValue), поэтому сервису не нужен сгенерированный код.
package authrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "library.auth.AuthService"

// Полные имена методов.
const (
	RegisterMethod      = "/" + ServiceName + "/Register"
	LoginMethod         = "/" + ServiceName + "/Login"
	ValidateTokenMethod = "/" + ServiceName + "/ValidateToken"
)

// AuthServer — серверная часть сервиса авторизации.
type AuthServer interface {
	Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterAuthServer регистрирует реализацию сервиса на gRPC-сервере.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc — описание сервиса для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: registerHandler},
		{MethodName: "Login", Handler: loginHandler},
		{MethodName: "ValidateToken", Handler: validateTokenHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "library/auth.proto",
}

func registerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RegisterMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).Register(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func loginHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LoginMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).Login(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func validateTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).ValidateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateTokenMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).ValidateToken(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
