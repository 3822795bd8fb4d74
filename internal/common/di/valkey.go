package di

import "github.com/valkey-io/valkey-go"

// DataValkeyClient 는 Wire 그래프에서 데이터용 valkey.Client 를 식별하기 위한 wrapper 타입이다.
type DataValkeyClient struct{ valkey.Client }
