package bag_test

import (
	"context"
	"fmt"
	"time"

	bag "github.com/joeycumines/go-bag"
)

// conn is a toy stand-in for a pooled resource, e.g. a database connection.
type conn struct {
	bag.StateCell
	id int
}

func (c *conn) BagState() *bag.StateCell { return &c.StateCell }

// Demonstrates the basic borrow/requite cycle.
func Example() {
	b := bag.New[*conn](nil)
	if err := b.Add(&conn{id: 1}); err != nil {
		panic(err)
	}

	c, err := b.Borrow(context.Background(), time.Second)
	if err != nil {
		panic(err)
	}
	fmt.Println("borrowed connection", c.id)

	if err := b.Requite(c); err != nil {
		panic(err)
	}

	//output:
	//borrowed connection 1
}

// Demonstrates wiring a Listener so the bag can ask for more items when a
// shared scan comes up empty.
func Example_listener() {
	var (
		b      *bag.Bag[*conn]
		nextID int
	)
	b = bag.New[*conn](&bag.Config{
		Listener: bag.ListenerFunc(func(ctx context.Context) {
			nextID++
			_ = b.Add(&conn{id: nextID})
		}),
	})

	c, err := b.Borrow(context.Background(), time.Second)
	if err != nil {
		panic(err)
	}
	fmt.Println("borrowed connection", c.id)

	//output:
	//borrowed connection 1
}
