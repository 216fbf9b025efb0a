package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/albin6/cellsphere/pkg/config"
)

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "cellsphere-dev"}

	require.Equal(t, "projects/cellsphere-dev/topics/cs-order-events", c.resourceName(kindTopic, "cs-order-events"))
	require.Equal(t, "projects/other/topics/x", c.resourceName(kindTopic, "projects/other/topics/x"))
	require.Equal(t, "projects/cellsphere-dev/subscriptions/orders-sub", c.resourceName(kindSubscription, " orders-sub "))
	require.Equal(t, "projects/cellsphere-dev/subscriptions/projects/other/topics/x", c.resourceName(kindSubscription, "projects/other/topics/x"))
	require.Empty(t, c.resourceName(kindTopic, "  "))
	require.Empty(t, (&Client{}).resourceName(kindTopic, "x"))

	var nilClient *Client
	require.Empty(t, nilClient.resourceName(kindTopic, "x"))
	require.Nil(t, nilClient.Publisher("x"))
	require.ErrorIs(t, nilClient.Ping(context.Background()), errNotInitialized)
	require.NoError(t, nilClient.Close())
}

func TestConfiguredNames(t *testing.T) {
	cfg := config.PubSubConfig{OrdersTopic: "orders", LedgerTopic: " ", OrdersSubscription: "orders-sub"}
	require.Equal(t, []string{"orders"}, topicNames(cfg))
	require.Equal(t, []string{"orders-sub"}, subscriptionNames(cfg))
	require.Empty(t, subscriptionNames(config.PubSubConfig{}))
}

func TestResourceError(t *testing.T) {
	require.NoError(t, resourceError("topic", "orders", nil))
	require.EqualError(t, resourceError("topic", "orders", status.Error(codes.NotFound, "gone")), `topic "orders" does not exist`)

	err := resourceError("subscription", "orders-sub", errors.New("dial"))
	require.ErrorContains(t, err, `checking subscription "orders-sub"`)
}
