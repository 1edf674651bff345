package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/bankingdemo/lib/mypublisher"
	"github.com/MarcGrol/bankingdemo/lib/mypubsub"
	"github.com/MarcGrol/bankingdemo/lib/myqueue"
	"github.com/MarcGrol/bankingdemo/lib/mystore"
	"github.com/MarcGrol/bankingdemo/lib/mytime"
	"github.com/MarcGrol/bankingdemo/lib/myuuid"
	"github.com/MarcGrol/bankingdemo/services/activity"
	"github.com/MarcGrol/bankingdemo/services/bankclient"
	"github.com/MarcGrol/bankingdemo/services/bankflow"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	creds, err := bankclient.NewCredentialsFromEnv()
	if err != nil {
		log.Fatalf("Error reading banking credentials: %s", err)
	}

	banking, err := bankclient.New(creds, os.Getenv("ENABLE_API_URL"), nower)
	if err != nil {
		log.Fatalf("Error creating banking client: %s", err)
	}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	flowStore, flowStoreCleanup, err := mystore.New[bankflow.FlowState](c)
	if err != nil {
		log.Fatalf("Error creating flow store: %s", err)
	}
	defer flowStoreCleanup()

	flowService := bankflow.NewService(flowStore, banking, nower, uuider, publisher)
	err = flowService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering flow service: %s", err)
	}

	activityStore, activityStoreCleanup, err := mystore.New[activity.ActivityRecord](c)
	if err != nil {
		log.Fatalf("Error creating activity store: %s", err)
	}
	defer activityStoreCleanup()

	activityService := activity.NewService(activityStore, pubsub, nower, uuider)
	err = activityService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering activity service: %s", err)
	}

	startWebServerBlocking(router)
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
