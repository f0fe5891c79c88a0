package options

// libcurl option ids. Integer options live at CURLOPTTYPE_LONG (0), string
// options at CURLOPTTYPE_STRINGPOINT (10000).
const (
	curlOptVerbose          ID = 41
	curlOptProxyPort        ID = 59
	curlOptHTTPProxyTunnel  ID = 61
	curlOptProxyType        ID = 101
	curlOptTimeoutMS        ID = 155
	curlOptConnectTimeoutMS ID = 156
	curlOptProxy            ID = 10004
	curlOptSSLCert          ID = 10025
	curlOptSSLCertType      ID = 10086
	curlOptSSLKey           ID = 10087
	curlOptSSLKeyType       ID = 10088
	curlOptNoProxy          ID = 10177
	curlOptProxySSLCert     ID = 10254
	curlOptProxySSLCertType ID = 10255
	curlOptProxySSLKey      ID = 10256
	curlOptProxySSLKeyType  ID = 10257
)

var registry = []Descriptor{
	{Name: "verbose", CurlName: "CURLOPT_VERBOSE", Target: curlOptVerbose, Kind: Integer, Help: "Enable verbose output from libcurl."},

	{Name: "timeout", CurlName: "CURLOPT_TIMEOUT_MS", Target: curlOptTimeoutMS, Kind: Integer, Help: "Timeout in milliseconds for the whole request."},
	{Name: "connect-timeout", CurlName: "CURLOPT_CONNECTTIMEOUT_MS", Target: curlOptConnectTimeoutMS, Kind: Integer, Help: "Timeout in milliseconds for the connection phase of the request."},

	{Name: "proxy", CurlName: "CURLOPT_PROXY", Target: curlOptProxy, Kind: Text, Help: "Set the proxy to use."},
	{Name: "proxy-port", CurlName: "CURLOPT_PROXYPORT", Target: curlOptProxyPort, Kind: Integer, Help: "Set the proxy port."},
	{Name: "proxy-type", CurlName: "CURLOPT_PROXYTYPE", Target: curlOptProxyType, Kind: Integer, Help: "Set the proxy type as a CURLPROXY_* number (0 http, 4 socks4, 5 socks5, 7 socks5h)."},
	{Name: "proxy-tunnel", CurlName: "CURLOPT_HTTPPROXYTUNNEL", Target: curlOptHTTPProxyTunnel, Kind: Integer, Help: "Use CONNECT to tunnel through a configured HTTP proxy."},
	{Name: "no-proxy", CurlName: "CURLOPT_NOPROXY", Target: curlOptNoProxy, Kind: Text, Help: "Contact these hosts directly, bypassing the proxy."},

	{Name: "client-cert", CurlName: "CURLOPT_SSLCERT", Target: curlOptSSLCert, Kind: Text, Help: "Use a client certificate for requests."},
	{Name: "client-cert-type", CurlName: "CURLOPT_SSLCERTTYPE", Target: curlOptSSLCertType, Kind: Text, Help: "Specify the type of the client certificate."},
	{Name: "client-key", CurlName: "CURLOPT_SSLKEY", Target: curlOptSSLKey, Kind: Text, Help: "Use a separate file as key with the client certificate."},
	{Name: "client-key-type", CurlName: "CURLOPT_SSLKEYTYPE", Target: curlOptSSLKeyType, Kind: Text, Help: "Specify the type of the client key."},

	{Name: "proxy-client-cert", CurlName: "CURLOPT_PROXY_SSLCERT", Target: curlOptProxySSLCert, Kind: Text, Help: "Use a client certificate to authenticate with the proxy."},
	{Name: "proxy-client-cert-type", CurlName: "CURLOPT_PROXY_SSLCERTTYPE", Target: curlOptProxySSLCertType, Kind: Text, Help: "Specify the type of the proxy client certificate."},
	{Name: "proxy-client-key", CurlName: "CURLOPT_PROXY_SSLKEY", Target: curlOptProxySSLKey, Kind: Text, Help: "Use the given key with the proxy client certificate."},
	{Name: "proxy-client-key-type", CurlName: "CURLOPT_PROXY_SSLKEYTYPE", Target: curlOptProxySSLKeyType, Kind: Text, Help: "Specify the type of the proxy client key."},
}
