package network

import (
	"context"
	"net"
	"net/http/httptest"

	socks5 "github.com/armon/go-socks5"
	"github.com/mccutchen/go-httpbin/httpbin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DialerMock struct {
	mock.Mock
}

func (d *DialerMock) Dial(network, address string) (net.Conn, error) {
	args := d.Called(network, address)

	return args.Get(0).(net.Conn), args.Error(1) //nolint: wrapcheck, forcetypeassert
}

func (d *DialerMock) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	args := d.Called(ctx, network, address)

	return args.Get(0).(net.Conn), args.Error(1) //nolint: wrapcheck, forcetypeassert
}

type HTTPServerTestSuite struct {
	suite.Suite

	httpServer *httptest.Server
}

func (suite *HTTPServerTestSuite) SetupSuite() {
	suite.httpServer = httptest.NewServer(httpbin.NewHTTPBin().Handler())
}

func (suite *HTTPServerTestSuite) TearDownSuite() {
	suite.httpServer.Close()
}

func (suite *HTTPServerTestSuite) HTTPServerAddress() string {
	return suite.httpServer.Listener.Addr().String()
}

type Socks5ServerTestSuite struct {
	HTTPServerTestSuite

	socks5Listener net.Listener
	socks5Server   *socks5.Server
}

func (suite *Socks5ServerTestSuite) SetupSuite() {
	suite.HTTPServerTestSuite.SetupSuite()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	suite.Require().NoError(err)

	server, err := socks5.New(&socks5.Config{
		Credentials: socks5.StaticCredentials{
			"user": "password",
		},
	})
	suite.Require().NoError(err)

	suite.socks5Listener = listener
	suite.socks5Server = server

	go server.Serve(listener) //nolint: errcheck
}

func (suite *Socks5ServerTestSuite) TearDownSuite() {
	suite.socks5Listener.Close()
	suite.HTTPServerTestSuite.TearDownSuite()
}

func (suite *Socks5ServerTestSuite) ProxyAddress() string {
	return suite.socks5Listener.Addr().String()
}
