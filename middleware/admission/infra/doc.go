// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: contador de janela fixa por chave, sharded, com varredura periódica
//   - Throttle: guarda global de vazão usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: estatísticas best-effort de admissão
package infra
