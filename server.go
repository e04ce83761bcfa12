package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/metro/router"
	"github.com/bluele/gcache"
	"github.com/samber/lo"
)

const (
	MetroServiceName = "metro.v1.MetroService"

	GetRouteProcedure       = "/" + MetroServiceName + "/GetRoute"
	ListStationsProcedure   = "/" + MetroServiceName + "/ListStations"
	GetFareSlabsProcedure   = "/" + MetroServiceName + "/GetFareSlabs"
	GetTopologyProcedure    = "/" + MetroServiceName + "/GetTopology"
	GetLastJourneyProcedure = "/" + MetroServiceName + "/GetLastJourney"
)

type GetRouteRequest struct {
	// 车站名或车站列表中的序号
	Start string      `json:"start"`
	End   string      `json:"end"`
	Mode  router.Mode `json:"mode"`
}

type GetRouteResponse struct {
	Journey    *router.Journey `json:"journey"`
	Directions []string        `json:"directions"`
}

type ListStationsRequest struct{}

type ListStationsResponse struct {
	Stations []router.StationRecord `json:"stations"`
}

type GetFareSlabsRequest struct{}

type GetFareSlabsResponse struct {
	Slabs []router.FareSlab `json:"slabs"`
}

type GetTopologyRequest struct {
	// 是否附带最近一次路线的车站序列用于高亮
	HighlightLastJourney bool `json:"highlight_last_journey"`
}

type GetTopologyResponse struct {
	Topology  *router.Topology `json:"topology"`
	Highlight []string         `json:"highlight,omitempty"`
}

type GetLastJourneyRequest struct{}

type GetLastJourneyResponse struct {
	Journey *router.Journey `json:"journey"`
}

type MetroServer struct {
	router *router.Router
	slot   *JourneySlot
	// 相同(起点, 终点, 模式)的查询结果缓存，为nil时不缓存
	cache gcache.Cache
}

func NewMetroServer(r *router.Router, slot *JourneySlot, cacheSize int) *MetroServer {
	s := &MetroServer{router: r, slot: slot}
	if slot == nil {
		s.slot = NewJourneySlot(nil)
	}
	if cacheSize > 0 {
		s.cache = gcache.New(cacheSize).LRU().Build()
	}
	return s
}

// 注册所有接口，返回路由前缀与handler
func NewMetroServiceHandler(s *MetroServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GetRouteProcedure, connect.NewUnaryHandler(GetRouteProcedure, s.GetRoute, opts...))
	mux.Handle(ListStationsProcedure, connect.NewUnaryHandler(ListStationsProcedure, s.ListStations, opts...))
	mux.Handle(GetFareSlabsProcedure, connect.NewUnaryHandler(GetFareSlabsProcedure, s.GetFareSlabs, opts...))
	mux.Handle(GetTopologyProcedure, connect.NewUnaryHandler(GetTopologyProcedure, s.GetTopology, opts...))
	mux.Handle(GetLastJourneyProcedure, connect.NewUnaryHandler(GetLastJourneyProcedure, s.GetLastJourney, opts...))
	return "/" + MetroServiceName + "/", mux
}

// 将查询错误转换为connect错误码
func toConnectError(err error) error {
	switch {
	case errors.Is(err, router.ErrUnknownStation):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, router.ErrUnknownMode):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, router.ErrNoPathFound):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func routeKey(start, end *router.StationRecord, mode router.Mode) string {
	return fmt.Sprintf("%d|%d|%s", start.Index, end.Index, mode)
}

func (s *MetroServer) GetRoute(
	ctx context.Context,
	req *connect.Request[GetRouteRequest],
) (*connect.Response[GetRouteResponse], error) {
	in := req.Msg
	start, err := s.router.Resolve(in.Start)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("start: %w", err))
	}
	end, err := s.router.Resolve(in.End)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("end: %w", err))
	}
	key := routeKey(start, end, in.Mode)
	var journey *router.Journey
	if s.cache != nil {
		if v, err := s.cache.Get(key); err == nil {
			journey = v.(*router.Journey)
		}
	}
	if journey == nil {
		log.Debugf("search %v route from %v to %v", in.Mode, start.Name, end.Name)
		journey, err = s.router.Route(start.Name, end.Name, in.Mode)
		if err != nil {
			log.Debugf("routing failed: %v", err)
			return nil, toConnectError(err)
		}
		if s.cache != nil {
			if err := s.cache.Set(key, journey); err != nil {
				log.Warnf("failed to cache route %s: %v", key, err)
			}
		}
	}
	saved := s.slot.Put(ctx, journey)
	return connect.NewResponse(&GetRouteResponse{
		Journey: saved,
		Directions: lo.Map(saved.Directions, func(d router.Direction, _ int) string {
			return d.Text()
		}),
	}), nil
}

func (s *MetroServer) ListStations(
	ctx context.Context,
	req *connect.Request[ListStationsRequest],
) (*connect.Response[ListStationsResponse], error) {
	return connect.NewResponse(&ListStationsResponse{Stations: s.router.Stations()}), nil
}

func (s *MetroServer) GetFareSlabs(
	ctx context.Context,
	req *connect.Request[GetFareSlabsRequest],
) (*connect.Response[GetFareSlabsResponse], error) {
	return connect.NewResponse(&GetFareSlabsResponse{Slabs: s.router.FareTable().Slabs()}), nil
}

func (s *MetroServer) GetTopology(
	ctx context.Context,
	req *connect.Request[GetTopologyRequest],
) (*connect.Response[GetTopologyResponse], error) {
	out := &GetTopologyResponse{Topology: s.router.Topology()}
	if req.Msg.HighlightLastJourney {
		if j := s.slot.Get(); j != nil {
			out.Highlight = j.Stations()
		}
	}
	return connect.NewResponse(out), nil
}

func (s *MetroServer) GetLastJourney(
	ctx context.Context,
	req *connect.Request[GetLastJourneyRequest],
) (*connect.Response[GetLastJourneyResponse], error) {
	j := s.slot.Get()
	if j == nil {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("no journey has been planned yet"))
	}
	return connect.NewResponse(&GetLastJourneyResponse{Journey: j}), nil
}

// 关闭服务
func (s *MetroServer) Close() {
	s.router.Close()
	if err := s.slot.Close(); err != nil {
		log.Warnf("failed to close journey store: %v", err)
	}
}
