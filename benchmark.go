package main

import (
	"context"
	"flag"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/metro/router"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 1000, "the random routing count for benchmark")
	benchmarkSeed  = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU   = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

// 随机生成count个查询，起终点为车站序号，模式随机
func benchmarkRequests(e *rand.Rand, stationCount, count int) []*connect.Request[GetRouteRequest] {
	reqs := make([]*connect.Request[GetRouteRequest], count)
	for i := range reqs {
		mode := router.ModeDistance
		if e.Intn(2) == 1 {
			mode = router.ModeInterchange
		}
		reqs[i] = connect.NewRequest(&GetRouteRequest{
			Start: strconv.Itoa(e.Intn(stationCount) + 1),
			End:   strconv.Itoa(e.Intn(stationCount) + 1),
			Mode:  mode,
		})
	}
	return reqs
}

func runBenchmark(server *MetroServer) {
	log.Logger.SetLevel(logrus.WarnLevel)
	stationCount := len(server.router.Stations())
	if stationCount == 0 {
		log.Error("benchmark skipped: no station")
		return
	}
	e := rand.New(rand.NewSource(*benchmarkSeed))
	reqs := benchmarkRequests(e, stationCount, *benchmarkCount)

	// 开始benchmark
	start := time.Now()
	var wg sync.WaitGroup
	var success atomic.Int32
	run := func(req *connect.Request[GetRouteRequest]) {
		res, err := server.GetRoute(context.Background(), req)
		if err != nil {
			// 不连通的车站对会失败
			log.Debugf("benchmark query failed: %v", err)
			return
		}
		if res.Msg.Journey != nil {
			success.Add(1)
		}
	}
	if *benchmarkCPU == 1 {
		for _, req := range reqs {
			run(req)
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(*benchmarkCPU)
		wg.Add(len(reqs))
		for _, req := range reqs {
			go func(req *connect.Request[GetRouteRequest]) {
				defer wg.Done()
				run(req)
			}(req)
		}
		wg.Wait()
	}
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(max(*benchmarkCount, 1)), "\n",
		"success:", success.Load(), "\n",
	)
}
